package dashboard

import (
	"github.com/paperiq/dashboard/internal/modulecard"
	"github.com/paperiq/dashboard/internal/models"
	"github.com/paperiq/dashboard/internal/session"
)

// CardView is one module card as rendered.
type CardView struct {
	Step        models.Step        `json:"step"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Color       string             `json:"color"`
	Processing  bool               `json:"processing"`
	Disabled    bool               `json:"disabled"`
	Output      *modulecard.Output `json:"output,omitempty"`
}

// View is a point-in-time copy of the dashboard for rendering.
type View struct {
	User    *models.User     `json:"user,omitempty"`
	File    *models.FileInfo `json:"file,omitempty"`
	Cards   []CardView       `json:"cards"`
	Notices []models.Notice  `json:"notices"`
}

// Snapshot copies the current state. With drain set, pending notices are
// consumed so they show exactly once.
func (d *Dashboard) Snapshot(drain bool) View {
	d.mu.RLock()
	file := d.file
	results := make(map[models.Step]models.Result, len(d.results))
	for k, v := range d.results {
		results[k] = v
	}
	d.mu.RUnlock()

	v := View{File: file, User: session.User(d.api.Storage())}
	for _, step := range models.Steps {
		card := d.cards[step]
		cv := CardView{
			Step:        step,
			Title:       card.Title,
			Description: card.Description,
			Color:       card.Color,
			Processing:  card.Processing(),
			Disabled:    file == nil,
		}
		if r, ok := results[step]; ok {
			cv.Output = modulecard.Render(r)
		}
		v.Cards = append(v.Cards, cv)
	}

	if drain {
		v.Notices = d.notices.Drain()
	} else {
		v.Notices = d.notices.Pending()
	}
	if v.Notices == nil {
		v.Notices = []models.Notice{}
	}
	return v
}

// Card returns the view of step's card, or nil.
func (v View) Card(step models.Step) *CardView {
	for i := range v.Cards {
		if v.Cards[i].Step == step {
			return &v.Cards[i]
		}
	}
	return nil
}
