package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/mcoot/matchclient/internal/model"
	"github.com/mcoot/matchclient/internal/session"
)

// Shell executes interactive commands against one registered session.
// Command failures are printed and the shell keeps going.
type Shell struct {
	session  *session.Session
	gatherer prometheus.Gatherer
	out      *Output
}

// NewShell creates a Shell
func NewShell(sess *session.Session, gatherer prometheus.Gatherer, out *Output) *Shell {
	return &Shell{session: sess, gatherer: gatherer, out: out}
}

// Execute runs one command line and reports whether the shell should exit
func (sh *Shell) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch command {
	case "quit", "exit":
		return true
	case "help":
		sh.out.PrintMessage("commands: state stored search idle request <id> requests say <text> messages end players whoami stats quit")
	case "state":
		var s model.State
		if s, err = sh.session.FetchState(ctx); err == nil {
			sh.out.Print(stateView(s))
		}
	case "stored":
		sh.out.Print(stateView(sh.session.StoredState()))
	case "search":
		if err = sh.session.Search(ctx); err == nil {
			sh.out.Print(stateView(sh.session.StoredState()))
		}
	case "idle":
		if err = sh.session.Idle(ctx); err == nil {
			sh.out.Print(stateView(sh.session.StoredState()))
		}
	case "request":
		err = sh.request(ctx, rest)
	case "requests":
		var players []model.Player
		if players, err = sh.session.Requests(ctx); err == nil {
			sh.out.Print(playerViews(players))
		}
	case "say":
		if rest == "" {
			err = fmt.Errorf("usage: say <text>")
			break
		}
		if err = sh.session.SendMessage(ctx, rest); err == nil {
			sh.out.PrintMessage("sent")
		}
	case "messages":
		var msgs []string
		if msgs, err = sh.session.Messages(ctx); err == nil {
			sh.out.Print(Messages(msgs))
		}
	case "end":
		if err = sh.session.EndGame(ctx); err == nil {
			sh.out.PrintMessage("game ended")
		}
	case "players":
		var players []model.Player
		if players, err = sh.session.Players(ctx); err == nil {
			sh.out.Print(playerViews(players))
		}
	case "whoami":
		var id model.Identity
		if id, err = sh.session.Identity(); err == nil {
			sh.out.Print(identityView(id))
		}
	case "stats":
		err = sh.stats()
	default:
		err = fmt.Errorf("unknown command %q (try help)", command)
	}

	if err != nil {
		sh.out.PrintError(err)
	}
	return false
}

func (sh *Shell) request(ctx context.Context, arg string) error {
	target, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("usage: request <id>")
	}

	inGame, err := sh.session.SendRequest(ctx, model.PlayerID(target))
	if err != nil {
		return err
	}
	sh.out.Print(RequestResult{Target: target, InGame: inGame})
	return nil
}

func (sh *Shell) stats() error {
	families, err := sh.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	lines := counterLines(families, "matchclient_transport_calls_total")
	if len(lines) == 0 {
		sh.out.PrintMessage("no calls recorded")
		return nil
	}
	sh.out.PrintMessage(strings.Join(lines, "\n"))
	return nil
}

// counterLines renders each series of the named counter as "label=value ... count"
func counterLines(families []*dto.MetricFamily, name string) []string {
	var lines []string
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s %.0f", strings.Join(labels, " "), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	return lines
}
