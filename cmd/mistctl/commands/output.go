package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/fatih/color"

	"github.com/GriffinCanCode/mist/internal/callbacks"
	"github.com/GriffinCanCode/mist/internal/result"
)

// printer renders replies either as text or as one JSON document per line.
type printer struct {
	out, errOut io.Writer
	json        bool

	okColor    *color.Color
	errorColor *color.Color
	eventColor *color.Color
}

func newPrinter(out, errOut io.Writer, json bool) *printer {
	return &printer{
		out:        out,
		errOut:     errOut,
		json:       json,
		okColor:    color.New(color.FgGreen),
		errorColor: color.New(color.FgRed, color.Bold),
		eventColor: color.New(color.FgCyan),
	}
}

// reply prints the outcome of one call.
func (p *printer) reply(op string, value any) {
	if p.json {
		p.emit(map[string]any{"op": op, "result": 0, "value": value})
		return
	}
	if value == nil {
		p.okColor.Fprintln(p.out, "ok")
		return
	}
	fmt.Fprintln(p.out, formatValue(value))
}

// failure prints err together with its packed result.
func (p *printer) failure(err error) {
	r := result.FromError(err)
	if p.json {
		p.emit(map[string]any{"result": uint32(r), "result_name": r.String(), "error": err.Error()})
		return
	}
	p.errorColor.Fprintf(p.errOut, "error %#08x (%s): %v\n", uint32(r), r, err)
}

// events prints drained callbacks in order.
func (p *printer) events(evs []callbacks.Event) {
	if p.json {
		out := make([]map[string]any, 0, len(evs))
		for _, ev := range evs {
			out = append(out, map[string]any{"callback": ev.Callback().String(), "data": ev})
		}
		p.emit(map[string]any{"events": out})
		return
	}
	if len(evs) == 0 {
		fmt.Fprintln(p.out, "no callbacks")
		return
	}
	for _, ev := range evs {
		p.eventColor.Fprintf(p.out, "%s", ev.Callback())
		fmt.Fprintf(p.out, " %+v\n", ev)
	}
}

func (p *printer) emit(v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		fmt.Fprintf(p.errOut, "encoding output: %v\n", err)
		return
	}
	fmt.Fprintln(p.out, string(data))
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case []uint32:
		parts := make([]string, len(x))
		for i, id := range x {
			parts[i] = fmt.Sprint(id)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case map[string]any:
		data, err := sonic.MarshalIndent(x, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", x)
	}
}
