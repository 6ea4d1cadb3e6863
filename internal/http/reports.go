package http

import (
	"context"
	"fmt"

	"shopfloor/internal/analytics"
	applog "shopfloor/internal/log"
)

// latestReport returns the cached report or runs one pass. Concurrent
// callers share the in-flight pass. Failed passes are not cached.
func (s *Server) latestReport(ctx context.Context, refresh bool) (analytics.Report, error) {
	if refresh {
		s.reports.Delete(latestReportKey)
	} else if report, ok := s.reports.Get(latestReportKey); ok {
		s.logger.DebugContext(ctx, "Report cache hit", applog.FieldPassID, report.PassID)
		return report, nil
	}

	v, err, shared := s.passes.Do(latestReportKey, func() (interface{}, error) {
		// The pass outlives any single request that joined it.
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.passTimeout)
		defer cancel()

		pass := analytics.NewPass(s.fetcher, analytics.PassConfig{
			Options:    s.opts,
			Logger:     s.logger.WithComponent(applog.ComponentAnalytics).Slog(),
			OnResolved: s.onResolved,
		})
		report, err := pass.Run(pctx)
		if err != nil {
			return analytics.Report{}, err
		}
		s.reports.Set(latestReportKey, report)
		return report, nil
	})
	if err != nil {
		return analytics.Report{}, fmt.Errorf("analytics pass: %w", err)
	}
	if shared {
		s.logger.DebugContext(ctx, "Joined in-flight analytics pass")
	}
	return v.(analytics.Report), nil
}

// onResolved archives and publishes a resolved report in the background.
func (s *Server) onResolved(report analytics.Report) {
	s.structured.LogPassResolved(context.Background(), report.PassID, report.Entries, report.Rejected)
	if s.archive == nil && s.publisher == nil {
		return
	}

	s.sideEffects.Add(1)
	go func() {
		defer s.sideEffects.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		fields := applog.NewFields().WithPass(report.PassID, report.Entries, report.Rejected)
		if s.archive != nil {
			if err := s.archive.SaveReport(ctx, report); err != nil {
				s.structured.LogError(ctx, "Failed to archive report", err, applog.ComponentStorage, applog.OpArchive, fields)
			}
		}
		if s.publisher != nil {
			if err := s.publisher.PublishReportComputed(ctx, report); err != nil {
				s.structured.LogError(ctx, "Failed to publish report", err, applog.ComponentAMQP, applog.OpPublish, fields)
			}
		}
	}()
}
