package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/skinmgr/internal/model"
	"github.com/xxxsen/skinmgr/internal/patcher"
)

func newController(env *Env) *patcher.Controller {
	return patcher.NewController(env.Manager.Layout(), env.Config.InstallPath)
}

// ApplyCommand applies one asset and keeps its overlay running until the
// process is interrupted.
type ApplyCommand struct {
	championID int
	skinID     int

	env  *Env
	ctrl *patcher.Controller
}

// NewApplyCommand builds the apply command.
func NewApplyCommand() *ApplyCommand { return &ApplyCommand{} }

func (c *ApplyCommand) Name() string { return "apply" }

func (c *ApplyCommand) Desc() string {
	return "Apply a skin or chroma and keep the overlay running until interrupted"
}

func (c *ApplyCommand) Init(f *pflag.FlagSet) {
	f.IntVar(&c.championID, "champion", 0, "champion id")
	f.IntVar(&c.skinID, "skin", -1, "skin or chroma id local to the champion")
}

func (c *ApplyCommand) PreRun(ctx context.Context) error {
	if c.championID <= 0 {
		return errors.New("apply requires --champion")
	}
	if c.skinID < 0 {
		return errors.New("apply requires --skin")
	}
	env, err := requireEnv()
	if err != nil {
		return err
	}
	if err := requireInstall(env); err != nil {
		return err
	}
	c.env = env
	if c.ctrl == nil {
		c.ctrl = newController(env)
	}
	return nil
}

func (c *ApplyCommand) Run(ctx context.Context) error {
	ref := model.AssetRef{ChampionID: c.championID, SkinID: c.skinID}
	if err := c.ctrl.Apply(ctx, ref); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.env.Out, "overlay running for %s, interrupt to stop\n", ref)
	<-ctx.Done()
	return nil
}

func (c *ApplyCommand) PostRun(ctx context.Context) error {
	c.ctrl.Stop(context.WithoutCancel(ctx))
	logutil.GetLogger(ctx).Info("overlay stopped")
	return nil
}

// SessionCommand reads "<championId> <skinId>" lines from stdin and applies
// each, superseding the previous overlay.
type SessionCommand struct {
	env  *Env
	ctrl *patcher.Controller
}

// NewSessionCommand builds the session command.
func NewSessionCommand() *SessionCommand { return &SessionCommand{} }

func (c *SessionCommand) Name() string { return "session" }

func (c *SessionCommand) Desc() string {
	return "Apply assets read as \"<champion> <skin>\" lines from stdin, one overlay at a time"
}

func (c *SessionCommand) Init(f *pflag.FlagSet) {}

func (c *SessionCommand) PreRun(ctx context.Context) error {
	env, err := requireEnv()
	if err != nil {
		return err
	}
	if err := requireInstall(env); err != nil {
		return err
	}
	c.env = env
	if c.ctrl == nil {
		c.ctrl = newController(env)
	}
	return nil
}

func (c *SessionCommand) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.env.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			ref, err := parseSelection(line)
			if err != nil {
				_, _ = fmt.Fprintf(c.env.Out, "skipped: %v\n", err)
				continue
			}
			if err := c.ctrl.Apply(ctx, ref); err != nil {
				// A failed apply leaves the session usable for the next line.
				logger.Error("apply failed", zap.String("asset", ref.String()), zap.Error(err))
				_, _ = fmt.Fprintf(c.env.Out, "failed %s: %v\n", ref, err)
				continue
			}
			_, _ = fmt.Fprintf(c.env.Out, "applied %s\n", ref)
		}
	}
}

func (c *SessionCommand) PostRun(ctx context.Context) error {
	c.ctrl.Stop(context.WithoutCancel(ctx))
	return nil
}

// parseSelection reads "<championId> <skinId>" or "<championId>/<skinId>".
func parseSelection(line string) (model.AssetRef, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '/' || r == ','
	})
	if len(fields) != 2 {
		return model.AssetRef{}, fmt.Errorf("expected \"<champion> <skin>\", got %q", line)
	}
	championID, err := strconv.Atoi(fields[0])
	if err != nil || championID <= 0 {
		return model.AssetRef{}, fmt.Errorf("invalid champion id %q", fields[0])
	}
	skinID, err := strconv.Atoi(fields[1])
	if err != nil || skinID < 0 {
		return model.AssetRef{}, fmt.Errorf("invalid skin id %q", fields[1])
	}
	return model.AssetRef{ChampionID: championID, SkinID: skinID}, nil
}

func init() {
	RegisterRunner("apply", func() IRunner { return NewApplyCommand() })
	RegisterRunner("session", func() IRunner { return NewSessionCommand() })
}
