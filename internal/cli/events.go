package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/awareness-backend/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print certification events from the Redis channel as JSON lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		if rt.cfg.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is not set")
		}
		bus, err := events.NewRedisBus(rt.log, rt.cfg.Redis)
		if err != nil {
			return err
		}
		defer bus.Close()

		out := cmd.OutOrStdout()
		enc := json.NewEncoder(out)
		if err := bus.StartForwarder(cmd.Context(), func(ev events.Event) {
			_ = enc.Encode(ev)
		}); err != nil {
			return err
		}
		<-cmd.Context().Done()
		return nil
	},
}
