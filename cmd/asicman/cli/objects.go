package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ferrous-networks/asicman/sdk"
	"github.com/ferrous-networks/asicman/store"
	"github.com/ferrous-networks/asicman/store/sqlite"
)

// ObjectsCmd lists the objects recorded in the warm-boot store.
type ObjectsCmd struct {
	OutputFlags
	Category string `name:"category" help:"Restrict to one category (port, bridge, route, queue)."`
}

type objectReport struct {
	Category  string    `json:"category"`
	Key       string    `json:"key"`
	KeyKind   string    `json:"key_kind"`
	SwitchID  string    `json:"switch_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *ObjectsCmd) openStore(ctx context.Context, cli *CLI) (store.Store, error) {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cli.Logger()
	if err != nil {
		return nil, err
	}
	return sqlite.New(ctx, cfg.Store.Path, logger)
}

// Run executes the objects command.
func (c *ObjectsCmd) Run(cli *CLI) error {
	ctx := context.Background()
	st, err := c.openStore(ctx, cli)
	if err != nil {
		return err
	}
	defer st.Close()

	categories := []sdk.ObjectCategory{
		sdk.CategoryPort, sdk.CategoryBridge, sdk.CategoryRoute, sdk.CategoryQueue,
	}
	if c.Category != "" {
		cat, err := sdk.ParseObjectCategory(c.Category)
		if err != nil {
			return err
		}
		categories = []sdk.ObjectCategory{cat}
	}

	var reports []objectReport
	for _, cat := range categories {
		records, err := st.ListObjects(ctx, cat)
		if err != nil {
			return fmt.Errorf("list %s objects: %w", cat, err)
		}
		for _, r := range records {
			reports = append(reports, objectReport{
				Category:  r.Category.String(),
				Key:       r.Key,
				KeyKind:   r.KeyKind,
				SwitchID:  r.SwitchID.String(),
				CreatedAt: r.CreatedAt,
			})
		}
	}

	if c.JSON() {
		return printJSON(reports)
	}
	if len(reports) == 0 {
		fmt.Println("No recorded objects")
		return nil
	}
	for _, r := range reports {
		fmt.Printf("%-8s %-40s %-6s %s\n", r.Category, r.Key, r.KeyKind, r.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

// SessionCmd shows the hardware session recorded in the store.
type SessionCmd struct {
	OutputFlags
}

type sessionReport struct {
	UUID      string    `json:"uuid"`
	Chip      string    `json:"chip"`
	SwitchID  string    `json:"switch_id"`
	StartedAt time.Time `json:"started_at"`
}

// Run executes the session command.
func (c *SessionCmd) Run(cli *CLI) error {
	ctx := context.Background()
	st, err := (&ObjectsCmd{}).openStore(ctx, cli)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := st.CurrentSession(ctx)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Println("No recorded session")
		return nil
	}
	if err != nil {
		return err
	}

	report := sessionReport{
		UUID:      sess.UUID.String(),
		Chip:      sess.Chip,
		SwitchID:  sess.SwitchID.String(),
		StartedAt: sess.StartedAt,
	}
	if c.JSON() {
		return printJSON(report)
	}
	fmt.Printf("uuid:       %s\n", report.UUID)
	fmt.Printf("chip:       %s\n", report.Chip)
	fmt.Printf("switch:     %s\n", report.SwitchID)
	fmt.Printf("started at: %s\n", report.StartedAt.Format(time.RFC3339))
	return nil
}
