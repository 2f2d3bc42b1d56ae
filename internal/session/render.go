package session

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Delyplott/DelyPlot-Web/internal/format"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

// TerminalRenderer prints the order desk as plain text.
type TerminalRenderer struct {
	w io.Writer
}

func NewTerminalRenderer(w io.Writer) *TerminalRenderer {
	return &TerminalRenderer{w: w}
}

var stateText = map[State]string{
	StateIdle:           "Ready for a new order.",
	StateAuthenticating: "Signing in...",
	StateAwaitingUpload: "Preparing the upload...",
	StateUploading:      "Uploading files...",
	StatePersisting:     "Saving the order...",
	StateListening:      "Order saved. Following its status.",
}

func (r *TerminalRenderer) State(s State) {
	fmt.Fprintf(r.w, "» %s\n", stateText[s])
}

func (r *TerminalRenderer) Alert(err error) {
	var failed *OrderFailedError
	if errors.As(err, &failed) {
		fmt.Fprintf(r.w, "!! The order could not be quoted: %s\n", orDefault(failed.Message, "no details"))
		return
	}
	fmt.Fprintf(r.w, "!! %s\n", err)
}

func (r *TerminalRenderer) Reset() {
	fmt.Fprintln(r.w, "-- new order --")
}

func (r *TerminalRenderer) Order(o *models.Order) {
	fmt.Fprint(r.w, RenderOrder(o))
}

// RenderOrder is the full text block for one order snapshot.
func RenderOrder(o *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order %s\n", o.ID)
	fmt.Fprintf(&b, "Status: %s  %s\n", o.Status, o.Status.Hint())
	fmt.Fprintf(&b, "Customer: %s\n", joinNonEmpty(" / ", o.Customer.Name, o.Customer.Phone, o.Customer.Email))
	fmt.Fprintf(&b, "Options: %s\n", joinNonEmpty(" / ", o.Options.Size, o.Options.Color, o.Options.Delivery))
	if o.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", o.Notes)
	}
	for _, f := range o.Files {
		size := "?"
		if f.Size != nil {
			size = format.Bytes(*f.Size)
		}
		fmt.Fprintf(&b, "File: %s (%s, %s)\n", f.Filename, f.ContentType, size)
	}

	if o.Preview != nil && o.Preview.URL != "" {
		fmt.Fprintf(&b, "Preview: %s\n", o.Preview.URL)
	}

	if q := o.Quote; q != nil {
		b.WriteString("Quote:\n")
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		for _, step := range q.Steps {
			fmt.Fprintf(tw, "  %s\t%s\n", step.Label, step.Value)
		}
		tw.Flush()
		fmt.Fprintf(&b, "Total: %s\n", format.CLP(q.TotalCLP))
		if q.Formula != "" {
			fmt.Fprintf(&b, "Formula: %s\n", q.Formula)
		}
	}

	if o.Status == models.StatusError && o.Error != nil {
		fmt.Fprintf(&b, "Error: %s\n", o.Error.Message)
	}
	return b.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return orDefault(strings.Join(out, sep), "-")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
