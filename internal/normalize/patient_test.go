package normalize

import (
	"encoding/json"
	"testing"

	"github.com/gyeh/chartmerge/internal/model"
)

func TestPatient_NilAndEmptyInput(t *testing.T) {
	if p := Patient(nil, "cerner", Options{}); p != nil {
		t.Errorf("nil input should yield nil, got %+v", p)
	}
	if p := Patient(json.RawMessage(``), "cerner", Options{}); p != nil {
		t.Errorf("empty input should yield nil, got %+v", p)
	}
	if p := Patient(json.RawMessage(`{not json`), "cerner", Options{}); p != nil {
		t.Errorf("undecodable input should yield nil, got %+v", p)
	}
}

func TestPatient_CommaDelimitedText(t *testing.T) {
	raw := json.RawMessage(`{"resourceType":"Patient","id":"p1","name":[{"text":"DOE, JOHN"}]}`)
	p := Patient(raw, "cerner", Options{})
	if p == nil {
		t.Fatal("expected a patient")
	}
	if p.FirstName != "JOHN" || p.LastName != "DOE" || p.FullName != "JOHN DOE" {
		t.Errorf("got first=%q last=%q full=%q", p.FirstName, p.LastName, p.FullName)
	}
	if p.Source != "cerner" {
		t.Errorf("source = %q", p.Source)
	}
}

func TestPatient_PlainTextName(t *testing.T) {
	raw := json.RawMessage(`{"name":[{"text":"Mary Jane Watson"}]}`)
	p := Patient(raw, "epic", Options{})
	if p.FirstName != "Mary" || p.LastName != "Jane Watson" {
		t.Errorf("got first=%q last=%q", p.FirstName, p.LastName)
	}
}

func TestPatient_StructuredNameBeatsText(t *testing.T) {
	raw := json.RawMessage(`{"name":[{"text":"WRONG, ORDER","family":"Smith","given":["Ann","Louise"]}]}`)
	p := Patient(raw, "epic", Options{})
	if p.FirstName != "Ann Louise" || p.LastName != "Smith" {
		t.Errorf("got first=%q last=%q", p.FirstName, p.LastName)
	}
}

func TestPatient_OfficialNamePreferred(t *testing.T) {
	raw := json.RawMessage(`{"name":[
		{"use":"nickname","text":"Johnny"},
		{"use":"official","family":"Doe","given":["John"]}
	]}`)
	p := Patient(raw, "cerner", Options{})
	if p.FirstName != "John" || p.LastName != "Doe" {
		t.Errorf("official name should win: first=%q last=%q", p.FirstName, p.LastName)
	}
}

func TestPatient_MissingNameYieldsEmptyNames(t *testing.T) {
	raw := json.RawMessage(`{"id":"p2","gender":"female","birthDate":"1984-02-29"}`)
	p := Patient(raw, "aetna", Options{})
	if p == nil {
		t.Fatal("missing name data must not fail the whole record")
	}
	if p.FirstName != "" || p.LastName != "" || p.FullName != "" {
		t.Errorf("expected empty names, got %+v", p)
	}
	if p.Gender != model.GenderFemale || p.DateOfBirth != "1984-02-29" {
		t.Errorf("demographics lost: %+v", p)
	}
}

func TestPatient_TelecomAndAddress(t *testing.T) {
	raw := json.RawMessage(`{
		"telecom":[
			{"system":"fax","value":"555-0100"},
			{"system":"phone","value":"555-0123"},
			{"system":"phone","value":"555-0999"},
			{"system":"email","value":"jdoe@example.com"}
		],
		"address":[{"line":["12 Main St","Apt 4"],"city":"Springfield","state":"IL","postalCode":"62704","country":"US"}]
	}`)
	p := Patient(raw, "epic", Options{})
	if p.Phone != "555-0123" {
		t.Errorf("phone = %q", p.Phone)
	}
	if p.Email != "jdoe@example.com" {
		t.Errorf("email = %q", p.Email)
	}
	if p.Address == nil || p.Address.Line1 != "12 Main St" || p.Address.Line2 != "Apt 4" || p.Address.City != "Springfield" {
		t.Errorf("address = %+v", p.Address)
	}
}

func TestPatient_RawStripping(t *testing.T) {
	raw := json.RawMessage(`{"id":"p1","name":[{"text":"DOE, JOHN"}]}`)

	if p := Patient(raw, "cerner", Options{}); p.Raw != nil {
		t.Error("raw must be stripped when not requested")
	}
	if p := Patient(raw, "cerner", Options{IncludeRaw: true}); string(p.Raw) != string(raw) {
		t.Error("raw must pass through unchanged when requested")
	}
}
