package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"
)

const defaultEndpoint = "https://restcountries.com/v3.1/all?fields=cca2,translations,name"

// Country is one entry of the reference list: ISO 3166-1 alpha-2 code plus
// the Spanish display name.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Directory is the immutable country reference list for one session. It is
// built once at startup and replaced wholesale on reload, never mutated.
type Directory struct {
	list    []Country
	byCode  map[string]string
	fromNet bool
}

// Loader fetches the reference list. Endpoint is overridable for tests.
type Loader struct {
	Endpoint string
	client   *http.Client
}

func NewLoader(timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Loader{
		Endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type restCountry struct {
	CCA2         string `json:"cca2"`
	Translations struct {
		Spa struct {
			Common string `json:"common"`
		} `json:"spa"`
	} `json:"translations"`
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
}

// Load builds the session directory. A failed fetch falls back to the
// static five-entry set atomically; the two sources are never merged.
func (l *Loader) Load(ctx context.Context) *Directory {
	dir, err := l.fetch(ctx)
	if err != nil {
		log.Printf("Country list unavailable, using fallback: %v", err)
		return Fallback()
	}
	return dir
}

func (l *Loader) fetch(ctx context.Context) (*Directory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("countries request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("countries request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("countries bad status: %s", resp.Status)
	}

	var payload []restCountry
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("countries decode: %w", err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("countries payload is empty")
	}

	list := make([]Country, 0, len(payload))
	for _, entry := range payload {
		code := strings.ToUpper(strings.TrimSpace(entry.CCA2))
		if code == "" {
			continue
		}
		name := entry.Translations.Spa.Common
		if name == "" {
			name = entry.Name.Common
		}
		if name == "" {
			name = code
		}
		list = append(list, Country{Code: code, Name: name})
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("countries payload had no usable entries")
	}

	return newDirectory(list, true), nil
}

// Fallback is the static set used when the reference list cannot be
// fetched, matching the five-entry offline set of the widget.
func Fallback() *Directory {
	return newDirectory([]Country{
		{Code: "US", Name: "Estados Unidos"},
		{Code: "ES", Name: "España"},
		{Code: "AR", Name: "Argentina"},
		{Code: "BR", Name: "Brasil"},
		{Code: "MX", Name: "México"},
	}, false)
}

func newDirectory(list []Country, fromNet bool) *Directory {
	sorted := make([]Country, len(list))
	copy(sorted, list)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	byCode := make(map[string]string, len(sorted))
	for _, c := range sorted {
		byCode[c.Code] = c.Name
	}

	return &Directory{list: sorted, byCode: byCode, fromNet: fromNet}
}

// Has reports whether code is a known ISO alpha-2 code.
func (d *Directory) Has(code string) bool {
	_, ok := d.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// Name returns the Spanish display name for code, or the code itself when
// unknown.
func (d *Directory) Name(code string) string {
	if name, ok := d.byCode[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return name
	}
	return code
}

// Search returns the entries whose name or code contains term,
// case-insensitively, preserving the directory's alphabetical order.
// An empty term returns the whole list.
func (d *Directory) Search(term string) []Country {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return d.All()
	}

	var matched []Country
	for _, c := range d.list {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Code), term) {
			matched = append(matched, c)
		}
	}
	return matched
}

// All returns a copy of the full sorted list.
func (d *Directory) All() []Country {
	out := make([]Country, len(d.list))
	copy(out, d.list)
	return out
}

// Len reports the number of entries.
func (d *Directory) Len() int { return len(d.list) }

// FromNetwork reports whether the directory came from the reference API
// rather than the static fallback set.
func (d *Directory) FromNetwork() bool { return d.fromNet }
