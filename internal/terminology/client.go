package terminology

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// ExternalClient is the external terminology tier. Both methods are
// best-effort: a nil CodeInfo with a nil error means the service answered
// but had no entry for the code.
type ExternalClient interface {
	LookupRxNorm(ctx context.Context, code string) (*CodeInfo, error)
	LookupLOINC(ctx context.Context, code string) (*CodeInfo, error)
	DrugClass(ctx context.Context, code string) (string, error)
}

const defaultHTTPTimeout = 5 * time.Second

// HTTPClient calls the public RxNav REST API and a FHIR terminology server's
// CodeSystem/$lookup operation. Every request carries a short timeout so a
// slow terminology service cannot stall a normalization batch.
type HTTPClient struct {
	rxnormBase string // e.g. https://rxnav.nlm.nih.gov/REST
	loincBase  string // e.g. https://fhir.loinc.org
	hc         *http.Client
	log        zerolog.Logger
}

// NewHTTPClient builds a client for the given service base URLs.
func NewHTTPClient(rxnormBase, loincBase string, log zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		rxnormBase: rxnormBase,
		loincBase:  loincBase,
		hc:         &http.Client{Timeout: defaultHTTPTimeout},
		log:        log,
	}
}

type rxnormProperties struct {
	Properties struct {
		RxCUI string `json:"rxcui"`
		Name  string `json:"name"`
		TTY   string `json:"tty"`
	} `json:"properties"`
}

// LookupRxNorm resolves an RxNorm concept via /rxcui/{code}/properties.json.
func (c *HTTPClient) LookupRxNorm(ctx context.Context, code string) (*CodeInfo, error) {
	u := fmt.Sprintf("%s/rxcui/%s/properties.json", c.rxnormBase, url.PathEscape(code))

	var resp rxnormProperties
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Properties.Name == "" {
		return nil, nil
	}

	info := &CodeInfo{Name: resp.Properties.Name}
	if class, err := c.DrugClass(ctx, code); err == nil && class != "" {
		info.Category = class
	}
	return info, nil
}

type rxclassResponse struct {
	RxClassDrugInfoList struct {
		RxClassDrugInfo []struct {
			RxClassMinConceptItem struct {
				ClassName string `json:"className"`
			} `json:"rxclassMinConceptItem"`
		} `json:"rxclassDrugInfo"`
	} `json:"rxclassDrugInfoList"`
}

// DrugClass resolves the therapeutic class of an RxNorm concept via the
// RxClass byRxcui endpoint.
func (c *HTTPClient) DrugClass(ctx context.Context, code string) (string, error) {
	u := fmt.Sprintf("%s/rxclass/class/byRxcui.json?rxcui=%s&relaSource=ATC",
		c.rxnormBase, url.QueryEscape(code))

	var resp rxclassResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return "", err
	}
	infos := resp.RxClassDrugInfoList.RxClassDrugInfo
	if len(infos) == 0 {
		return "", nil
	}
	return infos[0].RxClassMinConceptItem.ClassName, nil
}

type fhirParameters struct {
	ResourceType string `json:"resourceType"`
	Parameter    []struct {
		Name        string `json:"name"`
		ValueString string `json:"valueString,omitempty"`
	} `json:"parameter"`
}

// LookupLOINC resolves a LOINC code via the FHIR CodeSystem/$lookup
// operation and reads the display parameter of the returned Parameters
// resource.
func (c *HTTPClient) LookupLOINC(ctx context.Context, code string) (*CodeInfo, error) {
	u := fmt.Sprintf("%s/CodeSystem/$lookup?system=%s&code=%s",
		c.loincBase, url.QueryEscape(SystemLOINC), url.QueryEscape(code))

	var resp fhirParameters
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	for _, p := range resp.Parameter {
		if p.Name == "display" && p.ValueString != "" {
			return &CodeInfo{Name: p.ValueString}, nil
		}
	}
	return nil, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("terminology request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("terminology request: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read terminology response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode terminology response: %w", err)
	}
	return nil
}
