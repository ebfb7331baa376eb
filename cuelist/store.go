package cuelist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/renameio/v2"
	"github.com/robmorgan/stagehand/logger"
	"github.com/sirupsen/logrus"
)

// pageRecord is the on-disk form of a page.
type pageRecord struct {
	ID     PageID         `json:"id"`
	Lights map[string]int `json:"lights"`
	Links  linksRecord    `json:"links"`

	// Countdown is the remaining time in milliseconds; negative is disabled.
	Countdown int64  `json:"countdown"`
	Note      string `json:"note"`
}

type linksRecord struct {
	Next     PageID `json:"next,omitempty"`
	Previous PageID `json:"previous,omitempty"`
	Timeout  PageID `json:"timeout,omitempty"`
}

// Store reads and writes a show file.
type Store struct {
	Path string
}

// NewStore creates a store for the show file at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the show file. A missing file yields a show holding only the reserved
// pages; any other failure to read it is an error, so an unreadable show is never
// replaced by a blank one on the next save.
func (st *Store) Load() (*Show, error) {
	log := logger.GetProjectLogger()
	data, err := os.ReadFile(st.Path)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("path", st.Path).Info("no show file found, starting a new show")
		return NewShow(), nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: st.Path, Err: err}
	}
	show, err := Decode(data)
	if err != nil {
		return nil, &PersistenceError{Op: "decode", Path: st.Path, Err: err}
	}

	log.WithFields(logrus.Fields{"path": st.Path, "pages": show.Len()}).Info("loaded show")
	return show, nil
}

// Save replaces the show file with the current state of show in one atomic step.
func (st *Store) Save(show *Show) error {
	data, err := Encode(show)
	if err != nil {
		return &PersistenceError{Op: "encode", Path: st.Path, Err: err}
	}
	if err := renameio.WriteFile(st.Path, data, 0o644); err != nil {
		return &PersistenceError{Op: "write", Path: st.Path, Err: err}
	}

	log := logger.GetProjectLogger()
	log.WithFields(logrus.Fields{"path": st.Path, "pages": show.Len()}).Info("saved show")
	return nil
}

// Encode renders every page of show, ordered by id. Countdowns are written as the
// time remaining, not the time the page was created with.
func Encode(show *Show) ([]byte, error) {
	records := make([]pageRecord, 0, show.Len())
	for _, p := range show.Pages() {
		records = append(records, pageRecord{
			ID:     p.ID,
			Lights: p.Lights.Clone(),
			Links: linksRecord{
				Next:     p.Links.Next,
				Previous: p.Links.Previous,
				Timeout:  p.Links.Timeout,
			},
			Countdown: encodeCountdown(p.Countdown),
			Note:      p.Note,
		})
	}
	return json.MarshalIndent(records, "", " ")
}

// Decode parses a show file.
func Decode(data []byte) (*Show, error) {
	var records []pageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	pages := make([]*Page, 0, len(records))
	for _, r := range records {
		for name, percent := range r.Lights {
			if percent < 0 || percent > 100 {
				return nil, fmt.Errorf("page %q: light %q intensity %d outside 0-100", r.ID, name, percent)
			}
		}
		links := Links{Next: r.Links.Next, Previous: r.Links.Previous, Timeout: r.Links.Timeout}
		pages = append(pages, NewPage(r.ID, r.Lights, links, decodeCountdown(r.Countdown), r.Note))
	}
	return NewShowFromPages(pages)
}

func encodeCountdown(d time.Duration) int64 {
	if d < 0 {
		return -1
	}
	return d.Milliseconds()
}

func decodeCountdown(ms int64) time.Duration {
	if ms < 0 {
		return Disabled
	}
	return time.Duration(ms) * time.Millisecond
}
