package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/workstream-hr/workstream/modules/workflow/domain/workflowrecord"
	"github.com/workstream-hr/workstream/pkg/configuration"
	"github.com/workstream-hr/workstream/pkg/metrics"
	"github.com/workstream-hr/workstream/pkg/repo"
)

// SweepReport counts the records removed by one deduplication pass.
type SweepReport struct {
	Transfers        int64 `json:"transfers"`
	RequestApprovals int64 `json:"requestApprovals"`
}

func (r SweepReport) Total() int64 {
	return r.Transfers + r.RequestApprovals
}

// DedupSweeper repairs the "at most one meaningful workflow per logical
// event" invariant: duplicate transfer records for the same employee within
// the configured window, and duplicate approval records for the same request,
// are trimmed down to the most recent one. The sweep is idempotent and takes
// no locks; a duplicate created mid-sweep is picked up by the next pass.
type DedupSweeper struct {
	repo   workflowrecord.Repository
	window string
	log    *logrus.Logger
}

func NewDedupSweeper(repo workflowrecord.Repository, window string, log *logrus.Logger) *DedupSweeper {
	if window == "" {
		window = configuration.DedupWindowCalendarDay
	}
	return &DedupSweeper{repo: repo, window: window, log: log}
}

func (s *DedupSweeper) Run(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	transfers, err := s.sweepTransfers(ctx)
	if err != nil {
		if repo.IsUndefinedTable(err) {
			// Backing table not created yet: nothing to sweep.
			return SweepReport{}, nil
		}
		return report, err
	}
	report.Transfers = transfers

	approvals, err := s.sweepRequestApprovals(ctx)
	if err != nil {
		if repo.IsUndefinedTable(err) {
			return report, nil
		}
		return report, err
	}
	report.RequestApprovals = approvals

	if report.Total() > 0 && s.log != nil {
		s.log.WithFields(logrus.Fields{
			"transfers":         report.Transfers,
			"request_approvals": report.RequestApprovals,
		}).Info("deduplication sweep removed duplicate workflow records")
	}
	metrics.SweepDeletionsTotal.WithLabelValues("transfer").Add(float64(report.Transfers))
	metrics.SweepDeletionsTotal.WithLabelValues("request_approval").Add(float64(report.RequestApprovals))
	return report, nil
}

// sweepTransfers groups transfer records by (tenant, employee, window bucket)
// and keeps only the most recent record per group.
func (s *DedupSweeper) sweepTransfers(ctx context.Context) (int64, error) {
	if s.window == configuration.DedupWindowNone {
		return 0, nil
	}

	records, err := s.repo.ListByTypeAscending(ctx, workflowrecord.TypeTransfer)
	if err != nil {
		return 0, err
	}

	type groupKey struct {
		tenantID   uuid.UUID
		employeeID uint
		bucket     string
	}
	groups := make(map[groupKey][]*workflowrecord.Record)
	for _, record := range records {
		key := groupKey{
			tenantID:   record.TenantID,
			employeeID: record.EmployeeID,
			bucket:     record.CreatedAt.UTC().Format("2006-01-02"),
		}
		groups[key] = append(groups[key], record)
	}

	return s.deleteDuplicates(ctx, deleteCandidates(groups))
}

// sweepRequestApprovals groups approval records by the request they concern.
// Records without a requestId are never deleted.
func (s *DedupSweeper) sweepRequestApprovals(ctx context.Context) (int64, error) {
	records, err := s.repo.ListByTypeAscending(ctx, workflowrecord.TypeRequestApproval)
	if err != nil {
		return 0, err
	}

	type groupKey struct {
		tenantID  uuid.UUID
		requestID uint
	}
	groups := make(map[groupKey][]*workflowrecord.Record)
	for _, record := range records {
		details, ok := record.DecodedDetails().(workflowrecord.RequestApprovalDetails)
		if !ok || details.RequestID == 0 {
			continue
		}
		key := groupKey{tenantID: record.TenantID, requestID: details.RequestID}
		groups[key] = append(groups[key], record)
	}

	return s.deleteDuplicates(ctx, deleteCandidates(groups))
}

// deleteCandidates collects every record except the newest in each group.
// Input slices are in ascending creation order, so the newest is the last
// element; a sole member is never a candidate.
func deleteCandidates[K comparable](groups map[K][]*workflowrecord.Record) []uint {
	var ids []uint
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		latest := len(group) - 1
		for i, record := range group {
			if i != latest {
				ids = append(ids, record.ID)
			}
		}
	}
	return ids
}

func (s *DedupSweeper) deleteDuplicates(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	deleted, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("dedup sweep delete: %w", err)
	}
	return deleted, nil
}
