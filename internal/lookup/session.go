package lookup

import (
	"sync"

	"clima-dashboard/internal/countries"
)

// Session holds the per-session state the widget kept in globals: the
// country reference directory, the last country a query used, and the
// connectivity probe. The directory is replaced wholesale on reload,
// never mutated in place.
type Session struct {
	probe ConnectivityProbe

	mu          sync.RWMutex
	directory   *countries.Directory
	lastCountry string
}

func NewSession(directory *countries.Directory, probe ConnectivityProbe) *Session {
	if directory == nil {
		directory = countries.Fallback()
	}
	if probe == nil {
		probe = StaticProbe(true)
	}
	return &Session{
		probe:     probe,
		directory: directory,
	}
}

func (s *Session) Countries() *countries.Directory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.directory
}

// ReplaceCountries swaps in a freshly loaded directory.
func (s *Session) ReplaceCountries(directory *countries.Directory) {
	if directory == nil {
		return
	}
	s.mu.Lock()
	s.directory = directory
	s.mu.Unlock()
}

func (s *Session) LastCountry() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCountry
}

func (s *Session) setLastCountry(code string) {
	s.mu.Lock()
	s.lastCountry = code
	s.mu.Unlock()
}

func (s *Session) Probe() ConnectivityProbe { return s.probe }
