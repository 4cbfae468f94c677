package templates

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"eventreminder/internal/domain"
)

//go:embed defaults/*.txt
var defaultFS embed.FS

// messageData is what each template sees. Only event-level fields: any
// recipient-specific detail is appended later by the delivery engine.
type messageData struct {
	Name     string
	Date     string
	Time     string
	Location string
}

// Source implements domain.MessageTemplates from per-kind template
// files. The embedded defaults can be overridden per file by pointing
// overrideDir at a directory with the same file names, so message copy
// is adjustable without a rebuild while the catalog of kinds stays
// closed.
type Source struct {
	subjects map[domain.NotificationKind]*template.Template
	bodies   map[domain.NotificationKind]*template.Template
	loc      *time.Location
}

// NewSource parses templates for every kind. overrideDir may be empty.
func NewSource(overrideDir string, loc *time.Location) (*Source, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Source{
		subjects: make(map[domain.NotificationKind]*template.Template),
		bodies:   make(map[domain.NotificationKind]*template.Template),
		loc:      loc,
	}
	for _, kind := range domain.AllKinds() {
		subject, err := loadTemplate(overrideDir, string(kind)+"_subject.txt")
		if err != nil {
			return nil, fmt.Errorf("load subject template for %s: %w", kind, err)
		}
		body, err := loadTemplate(overrideDir, string(kind)+".txt")
		if err != nil {
			return nil, fmt.Errorf("load body template for %s: %w", kind, err)
		}
		s.subjects[kind] = subject
		s.bodies[kind] = body
	}
	return s, nil
}

func loadTemplate(overrideDir, name string) (*template.Template, error) {
	var raw []byte
	var err error
	if overrideDir != "" {
		raw, err = os.ReadFile(filepath.Join(overrideDir, name))
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	if raw == nil {
		raw, err = defaultFS.ReadFile("defaults/" + name)
		if err != nil {
			return nil, err
		}
	}
	return template.New(name).Parse(string(raw))
}

func (s *Source) Subject(kind domain.NotificationKind, event *domain.Event) string {
	return s.render(s.subjects, kind, event)
}

func (s *Source) Body(kind domain.NotificationKind, event *domain.Event) string {
	return s.render(s.bodies, kind, event)
}

func (s *Source) render(set map[domain.NotificationKind]*template.Template, kind domain.NotificationKind, event *domain.Event) string {
	tmpl, ok := set[kind]
	if !ok {
		panic(fmt.Sprintf("unknown notification kind %q", kind))
	}
	date := event.Date.In(s.loc)
	data := messageData{
		Name:     event.Name,
		Date:     date.Format("Monday, 2 January 2006"),
		Time:     date.Format("15:04"),
		Location: event.Location,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		// Templates are parsed at startup against a fixed data shape;
		// a render failure is a programming error.
		panic(fmt.Sprintf("render %s template: %v", kind, err))
	}
	return strings.TrimSpace(buf.String())
}
