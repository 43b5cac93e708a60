// Package app holds the four data-access services. Each one translates
// between UI-facing domain objects and the flat records of a table store,
// and applies light client-side filtering and aggregation on top.
package app

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"stayscape/internal/domain"
)

// errCreateFailed and friends are the generic failures raised when a batch
// write reports per-record errors; the specific messages travel through the
// notifier, not the error.
var (
	errCreateFailed = errors.New("create failed")
	errUpdateFailed = errors.New("update failed")
	errDeleteFailed = errors.New("delete failed")
)

// reportFailures pushes every per-record failure in a batch to the notifier,
// field-level where available, and returns the failed results. The batch is
// one record long in practice but the aggregation handles any size.
func reportFailures(notify domain.Notifier, op string, results []domain.WriteResult) []domain.WriteResult {
	var failed []domain.WriteResult
	for _, r := range results {
		if r.Success {
			continue
		}
		failed = append(failed, r)
		for _, fe := range r.Errors {
			notify.Notify(fmt.Sprintf("%s: %s", fe.Label, fe.Message))
		}
		if r.Message != "" {
			notify.Notify(r.Message)
		}
	}
	if len(failed) > 0 {
		log.Error().Str("op", op).Int("failed", len(failed)).Msg("batch write reported failures")
	}
	return failed
}

// firstSuccess returns the stored record of the first successful result.
func firstSuccess(results []domain.WriteResult) (domain.Record, bool) {
	for _, r := range results {
		if r.Success && r.Data != nil {
			return r.Data, true
		}
	}
	return nil, false
}

// notifyErr logs a failed remote call and forwards its message to the
// notifier.
func notifyErr(notify domain.Notifier, op string, err error) {
	log.Error().Str("op", op).Err(err).Msg("remote call failed")
	notify.Notify(err.Error())
}
