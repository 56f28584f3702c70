package dashboardcmd

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/gcstr/cardtrack/internal/api"
	"github.com/gcstr/cardtrack/internal/cli/dashboardcmd/theme"
	"github.com/gcstr/cardtrack/internal/logger"
	"github.com/gcstr/cardtrack/internal/tracker"
)

// Client is the card office API as the dashboard uses it.
type Client interface {
	Status(ctx context.Context, registerNumber string) (tracker.StatusSnapshot, error)
	RejectedCard(ctx context.Context, registerNumber string) (*tracker.RejectedCard, error)
	TransferAccepted(ctx context.Context, registerNumber string) (api.TransferResult, error)
	TransferRejected(ctx context.Context, registerNumber string) (api.TransferResult, error)
}

// Options configures the dashboard model.
type Options struct {
	RegisterNumber string
	Server         string
	Version        string
	// PollInterval is the status polling period. Zero disables polling.
	PollInterval time.Duration
	// SubmitDelay is how long step 1 shows before the optimistic move to step 2.
	SubmitDelay time.Duration
	Logger      logger.Logger
	// Now is swapped in tests.
	Now func() time.Time
}

// layout constants
const (
	paddingVertical        = 0
	paddingHorizontal      = 1
	totalHorizontalPadding = paddingHorizontal * 2
	maxContentWidth        = 96
	popupWidth             = 56
)

// model is the Bubble Tea model for the dashboard.
type model struct {
	width  int
	height int

	opts   Options
	client Client
	log    logger.Logger

	// parent outlives every identity; sessionCtx is cancelled on identity change
	// so requests issued for a previous student stop early.
	parent        context.Context
	sessionCtx    context.Context
	cancelSession context.CancelFunc

	state tracker.State
	// fetching counts outstanding fetches of the current generation.
	fetching int
	// fetchGen bumps whenever a refresh must not wait for the outstanding
	// pair, such as after a successful transfer. Results of an older
	// generation describe the card before the transfer and are dropped.
	fetchGen   uint64
	lastSynced time.Time
	lastErr    string

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	bar     progress.Model

	editing  bool
	input    textinput.Model
	inputErr string

	quitting bool
}

func newModel(ctx context.Context, client Client, opts Options) model {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := help.New()
	muted := lipgloss.NewStyle().Foreground(theme.FgMuted)
	halfMuted := lipgloss.NewStyle().Foreground(theme.FgHalfMuted)
	h.Styles.ShortKey = halfMuted
	h.Styles.ShortDesc = muted
	h.Styles.ShortSeparator = muted
	h.Styles.FullKey = halfMuted
	h.Styles.FullDesc = muted
	h.Styles.FullSeparator = muted

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = lipgloss.NewStyle().Foreground(theme.Info)

	bar := progress.New(progress.WithScaledGradient(theme.GradientStart, theme.GradientEnd), progress.WithoutPercentage())
	bar.Width = 40

	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Register number"
	in.CharLimit = 64
	in.PromptStyle = lipgloss.NewStyle().Foreground(theme.Success)

	m := model{
		opts:    opts,
		client:  client,
		log:     opts.Logger.With("component", "dashboard"),
		parent:  ctx,
		state:   tracker.New(strings.TrimSpace(opts.RegisterNumber)),
		keys:    newKeyMap(),
		help:    h,
		spinner: sp,
		bar:     bar,
		input:   in,
	}
	m.sessionCtx, m.cancelSession = context.WithCancel(ctx)
	return m
}

// busy reports whether a network call for the current session is pending.
func (m model) busy() bool {
	return m.fetching > 0 || m.state.InFlight.Accepted || m.state.InFlight.Rejected
}
