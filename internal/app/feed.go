package app

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
)

// FeedCommand refreshes the metadata feed only.
type FeedCommand struct {
	env *Env
}

// NewFeedCommand builds the feed command.
func NewFeedCommand() *FeedCommand { return &FeedCommand{} }

func (c *FeedCommand) Name() string { return "feed" }

func (c *FeedCommand) Desc() string { return "Refresh the skin metadata feed" }

func (c *FeedCommand) Init(f *pflag.FlagSet) {}

func (c *FeedCommand) PreRun(ctx context.Context) error {
	env, err := requireEnv()
	if err != nil {
		return err
	}
	c.env = env
	return nil
}

func (c *FeedCommand) Run(ctx context.Context) error {
	if err := c.env.Manager.RefreshFeed(ctx); err != nil {
		return err
	}
	champions := c.env.Manager.Store().Champions(ctx)
	_, _ = fmt.Fprintf(c.env.Out, "feed refreshed: %d champions\n", len(champions))
	return nil
}

func (c *FeedCommand) PostRun(ctx context.Context) error { return nil }

func init() {
	RegisterRunner("feed", func() IRunner { return NewFeedCommand() })
}
