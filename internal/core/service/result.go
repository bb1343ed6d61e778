package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/datphandbplus/financial-be-sub001/internal/tenant"
)

// Business outcome codes. Mutating operations answer with one of these inside
// a Result; they are data, not errors.
const (
	CodePlanOver                    = "PLAN_OVER"
	CodeCreatePlanSuccess           = "CREATE_PLAN_SUCCESS"
	CodeCreatePlanFail              = "CREATE_PLAN_FAIL"
	CodeUpdatePlanSuccess           = "UPDATE_PLAN_SUCCESS"
	CodeUpdatePlanFail              = "UPDATE_PLAN_FAIL"
	CodeProjectCostItemInvalid      = "PROJECT_COST_ITEM_INVALID"
	CodeProjectInvalid              = "PROJECT_INVALID"
	CodeCostModificationIsWaiting   = "PROJECT_COST_MODIFICATION_IS_WAITING"
	CodeProjectCostItemNoChange     = "PROJECT_COST_ITEM_NO_CHANGE"
	CodeCreateModificationSuccess   = "CREATE_COST_MODIFICATION_SUCCESS"
	CodeCreateModificationFail      = "CREATE_COST_MODIFICATION_FAIL"
	CodeUpdateModificationSuccess   = "UPDATE_COST_MODIFICATION_SUCCESS"
	CodeUpdateModificationFail      = "UPDATE_COST_MODIFICATION_FAIL"
	CodeCostModificationInvalid     = "COST_MODIFICATION_INVALID"
	CodePOApproverInvalid           = "PURCHASE_ORDER_APPROVER_INVALID"
	CodeUpdatePOApproverSuccess     = "UPDATE_PURCHASE_ORDER_APPROVER_SUCCESS"
	CodeUpdatePOApproverFail        = "UPDATE_PURCHASE_ORDER_APPROVER_FAIL"
	CodePOHasCostModificationItems  = "PO_HAS_COST_MODIFICATION_ITEMS"
	CodeVOApproverInvalid           = "VO_APPROVER_INVALID"
	CodeUpdateVOApproverSuccess     = "UPDATE_VO_APPROVER_SUCCESS"
	CodeUpdateVOApproverFail        = "UPDATE_VO_APPROVER_FAIL"
	CodeUserNotFound                = "USER_NOT_FOUND"
	CodeNothingChange               = "NOTHING_CHANGE"
	CodeUpdateProjectSuccess        = "UPDATE_PROJECT_SUCCESS"
	CodeUpdateProjectFail           = "UPDATE_PROJECT_FAIL"
	CodeUpdateProjectApproverFail   = "UPDATE_PROJECT_APPROVER_FAIL"
	CodeDeleteSheetSuccess          = "DELETE_SHEET_SUCCESS"
	CodeDataInvalid                 = "DATA_INVALID"
)

// Result is the uniform outcome of a mutating operation. Status false with a
// code means the operation was rejected and the store is unchanged.
type Result struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func ok(code string) Result {
	return Result{Status: true, Message: code}
}

func fail(code string) Result {
	return Result{Status: false, Message: code}
}

// rejection carries a business code out of a transaction closure. Returning it
// rolls the transaction back without being treated as an infrastructure fault.
type rejection struct {
	code string
}

func (r rejection) Error() string {
	return r.code
}

func reject(code string) error {
	return rejection{code: code}
}

// runTx wraps one multi-step mutation in a transaction. The closure either
// completes (commit, success code), returns a rejection (rollback, the
// rejection's code) or fails (rollback, log, the fallback fail code).
func runTx(ctx context.Context, tc *tenant.Context, log *zap.Logger, success, failure string, fn func(tx *gorm.DB) error) Result {
	err := tc.DB.WithContext(ctx).Transaction(fn)
	if err == nil {
		return ok(success)
	}

	var rej rejection
	if errors.As(err, &rej) {
		return fail(rej.code)
	}

	log.Error("Transaction failed",
		zap.String("channel", tc.Channel),
		zap.String("operation", success),
		zap.Error(err),
	)
	return fail(failure)
}
