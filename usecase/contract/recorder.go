package contract

import "github.com/fastygo/adcontract/domain"

// Recorder receives business events for metrics.
type Recorder interface {
	ContractCreated(status domain.ContractStatus)
	ContractRejected(code domain.ErrorCode)
	ContractCancelled()
	StatusWrittenBack(from, to domain.ContractStatus)
}

type nopRecorder struct{}

func (nopRecorder) ContractCreated(domain.ContractStatus) {}
func (nopRecorder) ContractRejected(domain.ErrorCode) {}
func (nopRecorder) ContractCancelled() {}
func (nopRecorder) StatusWrittenBack(domain.ContractStatus, domain.ContractStatus) {}
