package cli

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/brokerdesk/internal/client/services"
)

type dashboardRow struct {
	name   string
	total  int
	local  int
	denied bool
}

// Dashboard prints the number of records per resource. Resources the
// account may not read are shown as restricted. The counts are fetched
// concurrently.
func (a *App) Dashboard(ctx context.Context) error {
	rows, err := collectDashboard(ctx, a.views)
	if err != nil {
		return err
	}
	state := "online"
	if !a.monitor.Online() {
		state = "offline"
	}
	a.printf("Dashboard (%s)\n", state)
	for _, r := range rows {
		if r.denied {
			a.printf("  %-15s restricted\n", r.name)
			continue
		}
		if r.local > 0 {
			a.printf("  %-15s %5d  (%d local)\n", r.name, r.total, r.local)
		} else {
			a.printf("  %-15s %5d\n", r.name, r.total)
		}
	}
	return nil
}

func collectDashboard(ctx context.Context, views []resourceCmd) ([]dashboardRow, error) {
	rows := make([]dashboardRow, len(views))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range views {
		g.Go(func() error {
			rows[i].name = v.name()
			total, err := v.total(gctx)
			if err != nil {
				if services.IsPermissionError(err) {
					rows[i].denied = true
					return nil
				}
				return err
			}
			rows[i].total = total
			local, err := v.localCount(gctx)
			if err != nil {
				return err
			}
			rows[i].local = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}
