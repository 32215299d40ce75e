// Package operator defines the uniform contract over the six concrete
// fill operators and a registry for looking them up by type: a fixed
// operator/next/onError shape rather than an open node-executor graph.
package operator

import (
	"context"
	"fmt"
	"sync"

	"github.com/sheetfill/engine/pkg/models"
)

// Operator is the contract every one of the six fill operators implements.
// Operate may fail; Next and OnError are optional hooks invoked by the
// dispatcher after a successful or failed call respectively.
type Operator interface {
	// Operate runs the operator against input, returning its structured
	// output or an error classified via models.PipelineError.
	Operate(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error)

	// Next is called after a successful Operate, given its output. Most
	// operators have no use for it; it exists for symmetry with OnError.
	Next(ctx context.Context, output map[string]interface{})

	// OnError is called when Operate fails, given the error and the input
	// that produced it.
	OnError(ctx context.Context, err error, input map[string]interface{})
}

// BaseOperator supplies no-op Next/OnError so concrete operators only need
// to implement Operate.
type BaseOperator struct{}

func (BaseOperator) Next(ctx context.Context, output map[string]interface{})         {}
func (BaseOperator) OnError(ctx context.Context, err error, input map[string]interface{}) {}

// Registry is a thread-safe lookup of Operator by models.OperatorType.
type Registry struct {
	mu        sync.RWMutex
	operators map[models.OperatorType]Operator
}

// NewRegistry creates an empty operator registry.
func NewRegistry() *Registry {
	return &Registry{operators: make(map[models.OperatorType]Operator)}
}

// Register registers an operator for a type, replacing any prior one.
func (r *Registry) Register(opType models.OperatorType, op Operator) error {
	if opType == "" {
		return fmt.Errorf("operator type cannot be empty")
	}
	if op == nil {
		return fmt.Errorf("operator cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operators[opType] = op
	return nil
}

// Get retrieves the operator for a type, or models.ErrOperatorNotFound.
func (r *Registry) Get(opType models.OperatorType) (Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.operators[opType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrOperatorNotFound, opType)
	}
	return op, nil
}

// Has reports whether an operator is registered for opType.
func (r *Registry) Has(opType models.OperatorType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.operators[opType]
	return ok
}

// List returns every registered operator type.
func (r *Registry) List() []models.OperatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]models.OperatorType, 0, len(r.operators))
	for t := range r.operators {
		types = append(types, t)
	}
	return types
}
