package normalize

import (
	"encoding/json"

	"github.com/gyeh/chartmerge/internal/fhir"
	"github.com/gyeh/chartmerge/internal/model"
)

// Patient converts one raw Patient resource into canonical demographics.
// Nil, empty, or undecodable input yields nil.
func Patient(raw json.RawMessage, source string, opts Options) *model.CanonicalPatient {
	if len(raw) == 0 {
		return nil
	}
	var p fhir.Patient
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}

	first, last := parseHumanName(p.Name)

	out := &model.CanonicalPatient{
		Origin:      opts.origin(p.ID, source),
		FirstName:   first,
		LastName:    last,
		FullName:    fullName(first, last),
		DateOfBirth: p.BirthDate,
		Gender:      Gender(p.Gender),
	}
	if opts.IncludeRaw {
		out.Raw = raw
	}

	for _, tc := range p.Telecom {
		switch tc.System {
		case "phone":
			if out.Phone == "" {
				out.Phone = tc.Value
			}
		case "email":
			if out.Email == "" {
				out.Email = tc.Value
			}
		}
	}

	if len(p.Address) > 0 {
		a := p.Address[0]
		addr := &model.Address{
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		}
		if len(a.Line) > 0 {
			addr.Line1 = a.Line[0]
		}
		if len(a.Line) > 1 {
			addr.Line2 = a.Line[1]
		}
		out.Address = addr
	}

	return out
}
