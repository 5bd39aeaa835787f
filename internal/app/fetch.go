package app

import (
	"context"
	"errors"
)

// Fetch acquires records for the requested dates sequentially。
func (a *App) Fetch(ctx context.Context, opts FetchOptions) error {
	if len(opts.Dates) == 0 {
		return errors.New("至少需要一个日期，请检查 --date/--from/--to")
	}

	location := opts.Location
	if location == "" {
		location = a.Config.Fetch.DefaultLocation
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn 未配置，结果不会持久化")
	}
	if closeStore != nil {
		defer closeStore()
	}

	svc := a.newService(store, nil)

	results, err := svc.EnsureRecords(ctx, opts.Dates, location)
	if err != nil {
		return err
	}

	processed := 0
	failed := 0
	for _, result := range results {
		if result.Error != "" {
			failed++
			continue
		}
		processed++
	}

	a.Logger.Info().Int("processed", processed).Int("failed", failed).Msg("批量拉取完成")
	if failed > 0 {
		return errors.New("部分日期拉取失败，请检查日志")
	}
	return nil
}
