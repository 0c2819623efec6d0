package cli

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/readlit/internal/activity"
	"github.com/julianstephens/readlit/internal/constants"
	"github.com/julianstephens/readlit/internal/utils"
)

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	fmt.Printf("  %s: %s\n", constants.SettingTimezone, settings.Timezone)
	fmt.Printf("  %s: %s\n", constants.SettingHeatmapMetric, settings.HeatmapMetric)
	fmt.Printf("  %s: %d\n", constants.SettingTopListSize, settings.TopListSize)
	return nil
}

type SettingsSetCmd struct {
	Key   string `arg:"" help:"Setting key (timezone|heatmap_metric|top_list_size)."`
	Value string `arg:"" help:"New value."`
}

func (c *SettingsSetCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	switch c.Key {
	case constants.SettingTimezone:
		if !utils.ValidateTimezone(c.Value) {
			return fmt.Errorf("invalid timezone: %s", c.Value)
		}
		settings.Timezone = c.Value
	case constants.SettingHeatmapMetric:
		if _, err := activity.ParseMetric(c.Value); err != nil {
			return err
		}
		settings.HeatmapMetric = c.Value
	case constants.SettingTopListSize:
		n, err := strconv.Atoi(c.Value)
		if err != nil || n <= 0 {
			return fmt.Errorf("top list size must be a positive integer")
		}
		settings.TopListSize = n
	default:
		return fmt.Errorf("unknown setting: %s", c.Key)
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return err
	}

	fmt.Printf("Set %s = %s\n", c.Key, c.Value)
	return nil
}
