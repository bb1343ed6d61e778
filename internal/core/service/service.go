package service

import (
	"go.uber.org/zap"
)

// Services bundles the core subsystems for wiring.
type Services struct {
	Project              *ProjectService
	Plan                 *PlanService
	Cost                 *CostService
	Line                 *LineService
	POApproval           *POApprovalService
	VOApproval           *VOApprovalService
	ModificationApproval *ModificationApprovalService
	Reassign             *ReassignService
	Waiting              *WaitingService
}

func NewServices(log *zap.Logger) *Services {
	return &Services{
		Project:              NewProjectService(log),
		Plan:                 NewPlanService(log),
		Cost:                 NewCostService(log),
		Line:                 NewLineService(log),
		POApproval:           NewPOApprovalService(log),
		VOApproval:           NewVOApprovalService(log),
		ModificationApproval: NewModificationApprovalService(log),
		Reassign:             NewReassignService(log),
		Waiting:              NewWaitingService(log),
	}
}
