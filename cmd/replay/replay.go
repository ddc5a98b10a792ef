package replay

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/ryanreadbooks/codemaster/channel"
	chmodel "github.com/ryanreadbooks/codemaster/channel/model"
	"github.com/ryanreadbooks/codemaster/channel/stdio"
	"github.com/ryanreadbooks/codemaster/chat/controller"
	"github.com/ryanreadbooks/codemaster/chat/event"
	"github.com/ryanreadbooks/codemaster/chat/state"
	"github.com/ryanreadbooks/codemaster/config"
	"github.com/ryanreadbooks/codemaster/persist"
	"github.com/ryanreadbooks/codemaster/pkg/xmap"
	"github.com/ryanreadbooks/codemaster/store"
	stfactory "github.com/ryanreadbooks/codemaster/store/factory"
	"github.com/ryanreadbooks/codemaster/store/memory"
	"github.com/ryanreadbooks/codemaster/transcript"
)

var (
	plainOutput bool
	saveTitle   string
)

var ReplayCmd = &cobra.Command{
	Use:   "replay <events.jsonl>",
	Short: "Feed a recorded event log through the chat client.",
	Long: "Feed a recorded event log through the chat client and print the bash transcript " +
		"and the resulting conversation. Use - to read from stdin.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReplay(cmd.Context(), args[0], cmd.OutOrStdout())
	},
}

func init() {
	ReplayCmd.Flags().BoolVar(&plainOutput, "plain", false, "Strip colors and styles from the transcript.")
	ReplayCmd.Flags().StringVar(&saveTitle, "save", "", "Save the replayed conversation as a new session with this title.")
}

// Result is what a replay leaves behind.
type Result struct {
	State   state.State
	Counts  map[event.Type]int
	Dropped int
}

type options struct {
	out       io.Writer
	store     store.Store
	sessionID string
	timeout   time.Duration
}

// replay publishes every line of in and waits for the resulting writes.
func replay(ctx context.Context, in io.Reader, o options) (Result, error) {
	st := o.store
	if st == nil {
		st = memory.New()
	}

	bus := channel.NewBus()
	pipe := stdio.NewPipe(chmodel.Replay, in, nil, bus)

	dispatcher, err := persist.New(st, persist.Config{Timeout: o.timeout})
	if err != nil {
		return Result{}, err
	}

	ctrl := controller.New(pipe, dispatcher, st)
	if o.sessionID != "" {
		if err := ctrl.SwitchSession(ctx, o.sessionID); err != nil {
			_ = dispatcher.Close(o.timeout)
			return Result{}, err
		}
	}

	opts := []transcript.Option{}
	if o.out != nil {
		opts = append(opts, transcript.WithWriter(o.out))
	}
	formatter := transcript.New(opts...)

	counts := make(map[event.Type]int)
	bus.Subscribe(ctrl.HandleEvent)
	bus.Subscribe(formatter.HandleEvent)
	bus.Subscribe(func(d event.Delivery) {
		counts[d.Event.Type()]++
	})

	runErr := pipe.Run(ctx)
	if err := dispatcher.Close(o.timeout); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to save replayed messages: %w", err)
	}

	return Result{
		State:   ctrl.Snapshot(),
		Counts:  counts,
		Dropped: pipe.Dropped(),
	}, runErr
}

func runReplay(ctx context.Context, path string, w io.Writer) error {
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open event log: %w", err)
		}
		defer f.Close()
		in = f
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	o := options{out: w, timeout: cfg.Persist.Timeout}
	if plainOutput {
		o.out = plainWriter{w: w}
	}

	if saveTitle != "" {
		st, err := stfactory.NewStore(ctx,
			stfactory.WithDriver(cfg.Store.Driver),
			stfactory.WithPath(cfg.StorePath()),
		)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()

		sess, err := st.CreateSession(ctx, saveTitle)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		o.store, o.sessionID = st, sess.ID
	}

	res, err := replay(ctx, in, o)
	if err != nil {
		return err
	}

	printSummary(w, res)
	if o.sessionID != "" {
		fmt.Fprintf(w, "saved as session %s\n", o.sessionID)
	}
	return nil
}

func printSummary(w io.Writer, res Result) {
	fmt.Fprintf(w, "\n%d messages, loading=%t", len(res.State.Messages), res.State.Loading)
	if res.State.StreamingContent != "" {
		fmt.Fprintf(w, ", streaming %q", res.State.StreamingContent)
	}
	fmt.Fprintln(w)

	for _, typ := range xmap.SortedKeys(res.Counts) {
		fmt.Fprintf(w, "  %-12s %d\n", typ, res.Counts[typ])
	}
	if res.Dropped > 0 {
		fmt.Fprintf(w, "  %-12s %d\n", "dropped", res.Dropped)
	}
}

// plainWriter strips ANSI sequences from everything written through it.
type plainWriter struct {
	w io.Writer
}

func (p plainWriter) Write(b []byte) (int, error) {
	if _, err := io.WriteString(p.w, ansi.Strip(string(b))); err != nil {
		return 0, err
	}
	return len(b), nil
}
