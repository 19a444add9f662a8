package erp

import (
	"context"

	"github.com/DusanPaal/claim-management/internal/compiler"
	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/pkgerrors"
	"github.com/shopspring/decimal"
)

const reasonCodeForced = "XXX"

// createNotification implements spec.md §4.6's "Create-notification
// protocol" for both QM and ZQM transactions.
func createNotification(ctx context.Context, sess *Session, claim *domain.ClaimContext, pdf []byte) Result {
	create := claim.Create
	if create == nil {
		return Result{Outcome: OutcomeFailed, Reason: "claim context carries no notification-create ruleset"}
	}

	header := NotificationHeader{
		CompanyCode:    claim.Header.CompanyCode,
		Transaction:    string(claim.Header.Transaction),
		Coordinator:    create.Coordinator,
		Processor:      create.Processor,
		Responsible:    create.Responsible,
		AccountNumber:  claim.AccountNumber,
	}
	if create.Reference.Kind == domain.ReferenceInvoice {
		header.InvoiceNumber = create.Reference.Value
	}
	if create.Reference.Kind == domain.ReferenceDelivery {
		header.DeliveryNumber = create.Reference.Value
	}

	var notifID int64
	err := sess.withLockRetry(ctx, "erp.createNotification", func() error {
		id, err := sess.Client.CreateNotification(ctx, header)
		if err != nil {
			return err
		}
		notifID = id
		return nil
	})
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: err, Reason: "create-notification failed"}
	}

	var caseID int64
	err = sess.withLockRetry(ctx, "erp.createNotification", func() error {
		id, err := sess.Client.PostClaimDispute(ctx, notifID)
		if err != nil {
			return err
		}
		caseID = id
		return nil
	})
	if err != nil {
		return Result{Outcome: OutcomeFailed, Notif: notifID, Err: err, Reason: "post-claim-dispute failed"}
	}

	statusAC, _, err := compiler.CreateStatusAC(create.StatusAC, claim.Header.CompanyCode, extractedTaxRate(claim), "")
	if err != nil {
		return Result{Outcome: OutcomeFailed, Notif: notifID, Err: err, Reason: "status-ac derivation failed"}
	}

	attrs := CaseAttributes{
		CaseID:        caseID,
		CompanyCode:   claim.Header.CompanyCode,
		StatusAC:      statusAC,
		ReasonCode:    reasonCodeForced,
		AccountNumber: claim.AccountNumber,
	}
	if err := sess.Client.ChangeDisputeAttributes(ctx, attrs); err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: caseID, Notif: notifID, Err: err, Reason: "overwriting case attributes failed"}
	}

	if err := runTaskProtocol(ctx, sess, caseID, claim); err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: caseID, Notif: notifID, Err: err, Reason: "task protocol failed"}
	}

	if claim.CaseUpdate == nil && isUnderThreshold(claim) {
		if err := sess.Client.ChangeTaskStatus(ctx, caseID, "notification", "closed"); err != nil {
			return Result{Outcome: OutcomeFailed, CaseID: caseID, Notif: notifID, Err: err, Reason: "closing under-threshold notification failed"}
		}
	}

	if err := attachPDF(ctx, sess, caseID, create.AttachmentName, pdf); err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: caseID, Notif: notifID, Err: err, Reason: "attachment failed"}
	}

	if err := sess.Client.Commit(ctx); err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: caseID, Notif: notifID, Err: err, Reason: "commit failed"}
	}

	return Result{Outcome: OutcomeCreated, CaseID: caseID, Notif: notifID}
}

// addCase implements spec.md §4.6's "Add-case protocol": extend an
// existing notification with a new case, tolerating an "already in
// process" warning on re-activation.
func addCase(ctx context.Context, sess *Session, claim *domain.ClaimContext, pdf []byte, notif NotificationHeader) Result {
	extend := claim.Extend
	if extend == nil {
		return Result{Outcome: OutcomeFailed, Reason: "claim context carries no case-add ruleset"}
	}

	err := sess.withLockRetry(ctx, "erp.addCase", func() error {
		err := sess.Client.SaveNotification(ctx, notif)
		if err != nil && !pkgerrors.IsWarning(err) {
			return err
		}
		return nil
	})
	if err != nil {
		return Result{Outcome: OutcomeFailed, Notif: notif.NotificationID, Err: err, Reason: "re-activating notification failed"}
	}

	var caseID int64
	err = sess.withLockRetry(ctx, "erp.addCase", func() error {
		id, err := sess.Client.PostClaimDispute(ctx, notif.NotificationID)
		if err != nil {
			return err
		}
		caseID = id
		return nil
	})
	if err != nil {
		return Result{Outcome: OutcomeFailed, Notif: notif.NotificationID, Err: err, Reason: "post-claim-dispute failed"}
	}

	statusAC, _, err := compiler.CreateStatusAC(extend.StatusAC, claim.Header.CompanyCode, extractedTaxRate(claim), "")
	if err != nil {
		return Result{Outcome: OutcomeFailed, Notif: notif.NotificationID, Err: err, Reason: "status-ac derivation failed"}
	}

	attrs := CaseAttributes{CaseID: caseID, CompanyCode: claim.Header.CompanyCode, StatusAC: statusAC, ReasonCode: reasonCodeForced, AccountNumber: claim.AccountNumber}
	if err := sess.Client.ChangeDisputeAttributes(ctx, attrs); err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: caseID, Notif: notif.NotificationID, Err: err, Reason: "overwriting case attributes failed"}
	}

	if err := runTaskProtocol(ctx, sess, caseID, claim); err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: caseID, Notif: notif.NotificationID, Err: err, Reason: "task protocol failed"}
	}

	if err := attachPDF(ctx, sess, caseID, extend.AttachmentName, pdf); err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: caseID, Notif: notif.NotificationID, Err: err, Reason: "attachment failed"}
	}

	if err := sess.Client.Commit(ctx); err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: caseID, Notif: notif.NotificationID, Err: err, Reason: "commit failed"}
	}

	return Result{Outcome: OutcomeCreated, CaseID: caseID, Notif: notif.NotificationID}
}

// recordCredit implements spec.md §4.6's "Record-credit protocol".
func recordCredit(ctx context.Context, sess *Session, claim *domain.ClaimContext, pdf []byte, target CaseAttributes) Result {
	update := claim.CaseUpdate
	if update == nil {
		return Result{Outcome: OutcomeFailed, Reason: "claim context carries no case-update ruleset"}
	}

	current, err := sess.Client.GetDisputeDetail(ctx, target.CaseID)
	if err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: target.CaseID, Err: err, Reason: "fetching current case attributes failed"}
	}

	statusSales, err := compiler.CreateStatusSales(current.StatusSales, update.StatusSales, update.CreditAmount)
	if err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: target.CaseID, Err: err, Reason: "status-sales derivation failed"}
	}
	statusAC, _, err := compiler.CreateStatusAC(update.StatusAC, claim.Header.CompanyCode, extractedTaxRate(claim), current.StatusAC)
	if err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: target.CaseID, Err: err, Reason: "status-ac derivation failed"}
	}

	current.StatusSales = statusSales
	current.StatusAC = statusAC
	current.ReasonCode = reasonCodeForced
	current.RecordedCredits = update.CreditAmount

	remaining := current.DisputedAmount.Sub(update.CreditAmount)
	if current.DisputedAmount.GreaterThan(claim.Header.Threshold) &&
		current.RootCause != "L01" && current.RootCause != "L06" {
		current.RootCause = "L01"
	}
	if remaining.LessThan(claim.Header.Threshold) && current.Status == 1 {
		current.Status = 2
	}

	if err := sess.Client.ChangeDisputeAttributes(ctx, current); err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: target.CaseID, Err: err, Reason: "recording credit against case failed"}
	}

	if err := attachPDF(ctx, sess, target.CaseID, update.AttachmentName, pdf); err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: target.CaseID, Err: err, Reason: "attachment failed"}
	}

	if err := sess.Client.Commit(ctx); err != nil {
		return Result{Outcome: OutcomeFailed, CaseID: target.CaseID, Err: err, Reason: "commit failed"}
	}

	return Result{Outcome: OutcomeCreated, CaseID: target.CaseID}
}

// runTaskProtocol creates and completes the dispute task, then a CS task
// if the claim amount crosses the threshold (spec.md §4.6 steps 6-7).
func runTaskProtocol(ctx context.Context, sess *Session, caseID int64, claim *domain.ClaimContext) error {
	if err := sess.Client.ChangeTaskStatus(ctx, caseID, "dispute", "created"); err != nil {
		return err
	}
	if err := sess.Client.ChangeTaskStatus(ctx, caseID, "dispute", "completed"); err != nil {
		return err
	}
	if !isUnderThreshold(claim) {
		if err := sess.Client.ChangeTaskStatus(ctx, caseID, "cs", "created"); err != nil {
			return err
		}
	}
	return nil
}

// attachPDF resolves the attachment name template and performs the
// upload/link pair, the always-last step of every protocol (spec.md §5
// Ordering Guarantees: "attachment upload is the last step ... so partial
// failure leaves DMS attributes correct even if the PDF is unattached").
func attachPDF(ctx context.Context, sess *Session, caseID int64, attRule string, pdf []byte) error {
	if attRule == "" || pdf == nil {
		return nil
	}
	name, err := attachmentName(attRule, caseID)
	if err != nil {
		return err
	}
	guid, err := sess.Client.UploadOfficeDocument(ctx, name, pdf)
	if err != nil {
		return err
	}
	return sess.Client.CreateBinaryRelation(ctx, caseID, guid)
}

// extractedTaxRate reads the declared tax rate off the Claim Context's
// extracted data for compiler.CreateStatusAC's tax-code lookup (spec.md
// §4.5 "Status-AC templating"); nil means "no tax rate declared", which
// CreateStatusAC treats as an instruction to erase Status-AC.
func extractedTaxRate(claim *domain.ClaimContext) *decimal.Decimal {
	switch v := claim.ExtractedData["tax"].(type) {
	case decimal.Decimal:
		return &v
	case []decimal.Decimal:
		if len(v) > 0 {
			return &v[0]
		}
	}
	return nil
}

func isUnderThreshold(claim *domain.ClaimContext) bool {
	amount, ok := extractAmount(claim)
	if !ok {
		return false
	}
	return amount.LessThan(claim.Header.Threshold)
}
