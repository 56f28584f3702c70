package dashboardcmd

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gcstr/cardtrack/internal/api"
	"github.com/gcstr/cardtrack/internal/apperr"
	"github.com/gcstr/cardtrack/internal/tracker"
	"github.com/gcstr/cardtrack/internal/ui"
)

var fixedNow = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

// fakeClient is a synchronous stand-in for the card office. Commands run on
// the test goroutine, so no locking is needed.
type fakeClient struct {
	snaps     map[string]tracker.StatusSnapshot
	statusErr error
	rejected  map[string]*tracker.RejectedCard

	transferErr    error
	transferResult *api.TransferResult

	statusCalls   int
	acceptedCalls int
	rejectedCalls int
	ctxs          []context.Context
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		snaps:    map[string]tracker.StatusSnapshot{},
		rejected: map[string]*tracker.RejectedCard{},
	}
}

func (f *fakeClient) Status(ctx context.Context, reg string) (tracker.StatusSnapshot, error) {
	f.statusCalls++
	f.ctxs = append(f.ctxs, ctx)
	if f.statusErr != nil {
		return tracker.StatusSnapshot{}, f.statusErr
	}
	return f.snaps[reg], nil
}

func (f *fakeClient) RejectedCard(ctx context.Context, reg string) (*tracker.RejectedCard, error) {
	return f.rejected[reg], nil
}

func (f *fakeClient) TransferAccepted(ctx context.Context, reg string) (api.TransferResult, error) {
	f.acceptedCalls++
	return f.transfer()
}

func (f *fakeClient) TransferRejected(ctx context.Context, reg string) (api.TransferResult, error) {
	f.rejectedCalls++
	res, err := f.transfer()
	if err == nil && res.Success {
		delete(f.rejected, reg)
	}
	return res, err
}

func (f *fakeClient) transfer() (api.TransferResult, error) {
	if f.transferErr != nil {
		return api.TransferResult{}, f.transferErr
	}
	if f.transferResult != nil {
		return *f.transferResult, nil
	}
	return api.TransferResult{Success: true, TransferredCount: 1}, nil
}

func printingSnap() tracker.StatusSnapshot {
	return tracker.StatusSnapshot{
		Success: true, Status: tracker.StatusApprovedPrinting,
		ButtonText: "Printing...", Flags: tracker.Flags{IsPrinting: true},
	}
}

func readySnap() tracker.StatusSnapshot {
	return tracker.StatusSnapshot{
		Success: true, Status: tracker.StatusReadyPickup,
		ButtonText: "Ready for pickup", Flags: tracker.Flags{IsReadyForPickup: true},
	}
}

func newTestModel(c Client, reg string) model {
	m := newModel(context.Background(), c, Options{
		RegisterNumber: reg,
		Server:         "https://cards.example.edu",
		Version:        "1.2.3",
		SubmitDelay:    time.Millisecond,
		Now:            func() time.Time { return fixedNow },
	})
	m.width = 100
	m.height = 40
	return m
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// collect runs cmd and flattens batches into the messages they produce.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func step(m model, msg tea.Msg) (model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

// settle feeds msg and every message its commands produce until none remain.
func settle(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	queue := []tea.Msg{msg}
	for i := 0; len(queue) > 0; i++ {
		if i > 100 {
			t.Fatalf("model did not settle")
		}
		var cmd tea.Cmd
		m, cmd = step(m, queue[0])
		queue = append(queue[1:], collect(cmd)...)
	}
	return m
}

func refreshed(t *testing.T, m model) model {
	t.Helper()
	return settle(t, m, refreshMsg{session: m.state.Session})
}

func TestRefreshAppliesPrintingSnapshot(t *testing.T) {
	c := newFakeClient()
	c.snaps["A1"] = printingSnap()
	m := refreshed(t, newTestModel(c, "A1"))

	if m.state.Step != tracker.StepPrinting || !m.state.PrintingActive {
		t.Fatalf("expected printing step, got %+v", m.state.Tracker())
	}
	if !m.state.Form().Disabled {
		t.Fatalf("form must be disabled while printing")
	}
	if m.fetching != 0 {
		t.Fatalf("expected no outstanding fetches, got %d", m.fetching)
	}
	if !m.lastSynced.Equal(fixedNow) {
		t.Fatalf("lastSynced not recorded: %v", m.lastSynced)
	}
}

func TestRefreshWithoutIdentityDoesNothing(t *testing.T) {
	c := newFakeClient()
	m := refreshed(t, newTestModel(c, ""))
	if c.statusCalls != 0 {
		t.Fatalf("expected no fetch without identity, got %d", c.statusCalls)
	}
	if m.pollCmd() != nil {
		t.Fatalf("polling must not start without identity")
	}
}

func TestStatusErrorResetsToBaseline(t *testing.T) {
	c := newFakeClient()
	c.snaps["A1"] = printingSnap()
	m := refreshed(t, newTestModel(c, "A1"))

	c.statusErr = apperr.New("api.Status", apperr.Unavailable, "connection refused")
	m = refreshed(t, m)
	if m.state.Step != tracker.StepNoRequest || m.state.Form().Disabled {
		t.Fatalf("expected baseline after failed fetch, got %+v", m.state)
	}
	if m.state.ButtonText != tracker.DefaultButtonText {
		t.Fatalf("unexpected button text %q", m.state.ButtonText)
	}
	if m.lastErr == "" {
		t.Fatalf("expected sync error to be recorded")
	}
}

func TestReadyPopupOpensOnceAndAcknowledges(t *testing.T) {
	c := newFakeClient()
	c.snaps["A1"] = readySnap()
	m := refreshed(t, newTestModel(c, "A1"))
	if m.state.Popup.Kind != tracker.PopupReady {
		t.Fatalf("expected ready popup, got %v", m.state.Popup.Kind)
	}

	m, ack := step(m, keyRunes("a"))
	if ack == nil || !m.state.InFlight.Accepted {
		t.Fatalf("expected transfer to start")
	}
	m, again := step(m, tea.KeyMsg{Type: tea.KeyEnter})
	if again != nil {
		t.Fatalf("second press while in flight must not issue another transfer")
	}

	// The server keeps reporting ready; the popup must not come back.
	for _, msg := range collect(ack) {
		m = settle(t, m, msg)
	}
	if c.acceptedCalls != 1 {
		t.Fatalf("expected exactly one transfer, got %d", c.acceptedCalls)
	}
	if m.state.Popup.Open() || m.state.InFlight.Accepted {
		t.Fatalf("expected popup closed and lock released, got %+v", m.state.Popup)
	}
	if c.statusCalls != 2 {
		t.Fatalf("expected follow-up refresh after acknowledgement, got %d status calls", c.statusCalls)
	}
	m = refreshed(t, m)
	if m.state.Popup.Open() {
		t.Fatalf("ready popup reopened on a later poll")
	}
}

func TestAckFailureKeepsPopupAndShowsNotice(t *testing.T) {
	c := newFakeClient()
	c.snaps["A1"] = readySnap()
	c.transferErr = apperr.New("api.TransferAccepted", apperr.Unavailable, "connection reset")
	m := refreshed(t, newTestModel(c, "A1"))

	m = settle(t, m, keyRunes("a"))
	if c.acceptedCalls != 1 {
		t.Fatalf("expected one transfer attempt, got %d", c.acceptedCalls)
	}
	if m.state.Popup.Kind != tracker.PopupReady {
		t.Fatalf("popup must stay open after a failed transfer")
	}
	if m.state.InFlight.Accepted {
		t.Fatalf("lock must be released after failure")
	}
	if m.state.Notice == "" {
		t.Fatalf("expected a user-visible notice")
	}
	if !strings.Contains(ui.StripANSI(m.View()), m.state.Notice) {
		t.Fatalf("notice not rendered in popup:\n%s", m.View())
	}
}

func TestUnsuccessfulTransferSurfacesServerMessage(t *testing.T) {
	c := newFakeClient()
	c.snaps["A1"] = readySnap()
	c.transferResult = &api.TransferResult{Success: false, Message: "Card already collected"}
	m := settle(t, refreshed(t, newTestModel(c, "A1")), keyRunes("a"))

	if m.state.Notice != "Card already collected" {
		t.Fatalf("expected server message as notice, got %q", m.state.Notice)
	}
	if m.state.Popup.Kind != tracker.PopupReady {
		t.Fatalf("popup must stay open")
	}
}

func TestRejectedTakesPrecedenceOverReady(t *testing.T) {
	c := newFakeClient()
	c.snaps["A1"] = readySnap()
	c.rejected["A1"] = &tracker.RejectedCard{RegisterNumber: "A1", Name: "Ada", RejectionReason: "Blurry photo"}
	m := refreshed(t, newTestModel(c, "A1"))

	if m.state.Popup.Kind != tracker.PopupRejected {
		t.Fatalf("expected rejected popup first, got %v", m.state.Popup.Kind)
	}
	view := ui.StripANSI(m.View())
	for _, want := range []string{"Request rejected", "Ada", "Blurry photo"} {
		if !strings.Contains(view, want) {
			t.Fatalf("popup missing %q:\n%s", want, view)
		}
	}

	m = settle(t, m, keyRunes("a"))
	if c.rejectedCalls != 1 || c.acceptedCalls != 0 {
		t.Fatalf("expected one rejected transfer, got rejected=%d accepted=%d", c.rejectedCalls, c.acceptedCalls)
	}
	if m.state.Popup.Kind != tracker.PopupReady {
		t.Fatalf("queued ready popup must show after the rejection is acknowledged, got %v", m.state.Popup.Kind)
	}
	if m.state.RejectedCard != nil {
		t.Fatalf("rejected card must be cleared")
	}
}

func TestRejectedBeforeStatusStillQueuesReady(t *testing.T) {
	c := newFakeClient()
	m := newTestModel(c, "A1")
	m.fetching = 2
	card := &tracker.RejectedCard{Name: "Ada"}
	m, _ = step(m, rejectedMsg{session: 1, card: card})
	m, _ = step(m, statusMsg{session: 1, snap: readySnap()})

	if m.state.Popup.Kind != tracker.PopupRejected {
		t.Fatalf("rejected popup must win regardless of arrival order, got %v", m.state.Popup.Kind)
	}
	m = settle(t, m, keyRunes("a"))
	if m.state.Popup.Kind != tracker.PopupReady {
		t.Fatalf("expected queued ready popup, got %v", m.state.Popup.Kind)
	}
}

func TestRejectedFetchIssuedBeforeAckIsIgnored(t *testing.T) {
	c := newFakeClient()
	c.rejected["A1"] = &tracker.RejectedCard{Name: "Ada"}
	m := refreshed(t, newTestModel(c, "A1"))

	m, poll := step(m, pollTickMsg{session: m.state.Session})
	stale := collect(poll) // still sees the card
	m, ack := step(m, keyRunes("a"))
	for _, msg := range collect(ack) {
		m, _ = step(m, msg)
	}
	if m.state.Popup.Open() {
		t.Fatalf("popup should close after acknowledgement")
	}
	for _, msg := range stale {
		m, _ = step(m, msg)
	}
	if m.state.Popup.Open() {
		t.Fatalf("stale rejected fetch reopened the popup")
	}
}

func TestAckRefreshesEvenWithPollOutstanding(t *testing.T) {
	c := newFakeClient()
	c.snaps["A1"] = readySnap()
	m := refreshed(t, newTestModel(c, "A1"))

	m, poll := step(m, pollTickMsg{session: m.state.Session})
	stale := collect(poll) // taken before the transfer; still reports ready

	m, ack := step(m, keyRunes("a"))
	// the office moves the card to history
	c.snaps["A1"] = tracker.StatusSnapshot{Success: true, Status: tracker.StatusNone, FormEnabled: true, ButtonText: "Submit Request"}
	done := collect(ack)
	if len(done) != 1 {
		t.Fatalf("expected one transfer result, got %d", len(done))
	}
	m, follow := step(m, done[0])
	if follow == nil {
		t.Fatalf("a successful transfer must trigger a follow-up refresh")
	}
	fresh := collect(follow)

	for _, msg := range stale {
		m, _ = step(m, msg)
	}
	if m.state.Form().Disabled {
		t.Fatalf("snapshot taken before the transfer disabled the form")
	}
	for _, msg := range fresh {
		m, _ = step(m, msg)
	}
	if c.acceptedCalls != 1 || c.statusCalls != 3 {
		t.Fatalf("expected one transfer and three status fetches, got %d and %d", c.acceptedCalls, c.statusCalls)
	}
	if m.state.Step != tracker.StepNoRequest || m.state.Popup.Open() || m.state.Form().Disabled {
		t.Fatalf("expected post-transfer snapshot, got %+v", m.state)
	}
	if m.fetching != 0 {
		t.Fatalf("expected no outstanding fetches, got %d", m.fetching)
	}
}

func TestRejectedPopupClosesWhenAcknowledgedElsewhere(t *testing.T) {
	c := newFakeClient()
	c.rejected["A1"] = &tracker.RejectedCard{Name: "Ada"}
	m := refreshed(t, newTestModel(c, "A1"))
	if m.state.Popup.Kind != tracker.PopupRejected {
		t.Fatalf("expected rejected popup, got %v", m.state.Popup.Kind)
	}

	delete(c.rejected, "A1")
	m = refreshed(t, m)
	if m.state.Popup.Open() || m.state.RejectedCard != nil {
		t.Fatalf("popup must close once the card is gone, got %+v", m.state.Popup)
	}
	if c.rejectedCalls != 0 {
		t.Fatalf("no transfer expected, got %d", c.rejectedCalls)
	}
}

func TestStaleResultsDroppedAfterIdentityChange(t *testing.T) {
	c := newFakeClient()
	c.snaps["A1"] = readySnap()
	c.snaps["B2"] = printingSnap()
	m := newTestModel(c, "A1")

	m, pending := step(m, refreshMsg{session: 1})
	m, _ = step(m, keyRunes("i"))
	if !m.editing {
		t.Fatalf("expected identity input to open")
	}
	m.input.SetValue("B2")
	m, next := step(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state.Identity != "B2" || m.state.Session != 2 {
		t.Fatalf("identity not switched: %+v", m.state)
	}

	for _, msg := range collect(pending) {
		m, _ = step(m, msg)
	}
	if m.state.Popup.Open() || m.state.Step != tracker.StepNoRequest {
		t.Fatalf("result for the previous identity leaked into state: %+v", m.state)
	}
	if c.ctxs[0].Err() == nil {
		t.Fatalf("requests for the previous identity must be cancelled")
	}

	for _, msg := range collect(next) {
		m = settle(t, m, msg)
	}
	if m.state.Step != tracker.StepPrinting {
		t.Fatalf("expected new identity's snapshot, got step %v", m.state.Step)
	}
}

func TestPollTickForPreviousSessionStops(t *testing.T) {
	c := newFakeClient()
	m := newTestModel(c, "A1")
	m.opts.PollInterval = time.Hour
	m.state.SetIdentity("B2")
	if _, cmd := step(m, pollTickMsg{session: 1}); cmd != nil {
		t.Fatalf("stale poll tick must not reschedule")
	}
	if _, cmd := step(m, pollTickMsg{session: m.state.Session}); cmd == nil {
		t.Fatalf("current poll tick must reschedule")
	}
}

func TestInvalidIdentityKeepsEditing(t *testing.T) {
	m := newTestModel(newFakeClient(), "A1")
	m, _ = step(m, keyRunes("i"))
	m.input.SetValue("../etc")
	m, cmd := step(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.editing || m.inputErr == "" || cmd != nil {
		t.Fatalf("expected validation error, editing=%v err=%q", m.editing, m.inputErr)
	}
	m, _ = step(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.editing || m.state.Identity != "A1" {
		t.Fatalf("esc must cancel without changing identity")
	}
}

func TestSubmitAdvancesAfterDelay(t *testing.T) {
	c := newFakeClient()
	m := refreshed(t, newTestModel(c, "A1"))

	m, cmd := step(m, keyRunes("s"))
	if m.state.Step != tracker.StepSubmitted || cmd == nil {
		t.Fatalf("expected optimistic step 1, got %v", m.state.Step)
	}
	for _, msg := range collect(cmd) {
		m, _ = step(m, msg)
	}
	if m.state.Step != tracker.StepUnderReview {
		t.Fatalf("expected step 2 after delay, got %v", m.state.Step)
	}
}

func TestSubmitSupersededBySnapshot(t *testing.T) {
	c := newFakeClient()
	m := refreshed(t, newTestModel(c, "A1"))

	m, advance := step(m, keyRunes("s"))
	m.fetching = 1
	m, _ = step(m, statusMsg{session: m.state.Session, snap: printingSnap()})
	for _, msg := range collect(advance) {
		m, _ = step(m, msg)
	}
	if m.state.Step != tracker.StepPrinting {
		t.Fatalf("late optimistic advance overwrote the snapshot: %v", m.state.Step)
	}
}

func TestSubmitBlockedWhileFormDisabled(t *testing.T) {
	c := newFakeClient()
	c.snaps["A1"] = printingSnap()
	m := refreshed(t, newTestModel(c, "A1"))

	m, cmd := step(m, keyRunes("s"))
	if cmd != nil || m.state.Step != tracker.StepPrinting {
		t.Fatalf("submit must be ignored while printing")
	}
}

func TestPopupBlocksOtherKeys(t *testing.T) {
	c := newFakeClient()
	c.snaps["A1"] = readySnap()
	m := refreshed(t, newTestModel(c, "A1"))
	calls := c.statusCalls

	for _, k := range []string{"s", "r", "i"} {
		var cmd tea.Cmd
		m, cmd = step(m, keyRunes(k))
		if cmd != nil {
			t.Fatalf("key %q should be blocked by the popup", k)
		}
	}
	if m.editing || c.statusCalls != calls {
		t.Fatalf("popup did not block input")
	}
}

func TestQuitCancelsSession(t *testing.T) {
	m := newTestModel(newFakeClient(), "A1")
	ctx := m.sessionCtx
	m, cmd := step(m, keyRunes("q"))
	if !m.quitting || cmd == nil {
		t.Fatalf("expected quit")
	}
	if ctx.Err() == nil {
		t.Fatalf("session context must be cancelled on quit")
	}
	if m.View() != "" {
		t.Fatalf("view must be empty after quitting")
	}
}

func TestTransferErrFoldsUnsuccessfulResult(t *testing.T) {
	if err := transferErr(api.TransferResult{Success: true}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := transferErr(api.TransferResult{}, nil)
	if !apperr.IsKind(err, apperr.External) {
		t.Fatalf("expected external error, got %v", err)
	}
	boom := errors.New("boom")
	if got := transferErr(api.TransferResult{}, boom); !errors.Is(got, boom) {
		t.Fatalf("transport error must pass through, got %v", got)
	}
}
