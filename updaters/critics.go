package updaters

import (
	"github.com/pearll/pearll/models"
	"github.com/pearll/pearll/types"
)

// QRegression regresses the Q-value of the taken action against a TD
// target, the critic update of DQN.
type QRegression struct{}

// NewQRegression creates the DQN critic updater.
func NewQRegression() *QRegression { return &QRegression{} }

// Update fits critic's Q-values at the batch actions to targets and
// returns the mean squared error.
func (u *QRegression) Update(critic *models.Network, batch *types.Batch, targets []float64, opt Optimizer) (types.UpdateLog, error) {
	n := batch.Len()
	if n == 0 {
		return types.UpdateLog{}, types.NewError(types.ErrEmptyBuffer, "Q regression on empty batch")
	}
	if len(targets) != n {
		return types.UpdateLog{}, types.NewErrorf(types.ErrShapeMismatch,
			"got %d targets for %d transitions", len(targets), n)
	}

	actions := batch.DiscreteActions()
	grad := critic.NewGrad()
	gradOut := make([]float64, critic.OutDim())
	var loss float64
	for i, obs := range batch.Observations {
		qs := critic.Forward(obs, nil)
		a := actions[i]
		diff := qs[a] - targets[i]
		loss += diff * diff

		for k := range gradOut {
			gradOut[k] = 0
		}
		gradOut[a] = 2 * diff / float64(n)
		critic.Accumulate(obs, nil, gradOut, grad)
	}
	if err := applyStep(critic, grad, opt); err != nil {
		return types.UpdateLog{}, err
	}
	return types.UpdateLog{Loss: loss / float64(n)}, nil
}

// ValueRegression fits a scalar state-value network to estimated
// returns, the critic update of on-policy agents.
type ValueRegression struct{}

// NewValueRegression creates the value-function updater.
func NewValueRegression() *ValueRegression { return &ValueRegression{} }

// Update fits critic(obs) to returns and reports the mean squared error.
func (u *ValueRegression) Update(critic *models.Network, batch *types.Batch, returns []float64, opt Optimizer) (types.UpdateLog, error) {
	n := batch.Len()
	if n == 0 {
		return types.UpdateLog{}, types.NewError(types.ErrEmptyBuffer, "value regression on empty batch")
	}
	if len(returns) != n {
		return types.UpdateLog{}, types.NewErrorf(types.ErrShapeMismatch,
			"got %d returns for %d transitions", len(returns), n)
	}

	grad := critic.NewGrad()
	var loss float64
	for i, obs := range batch.Observations {
		v := critic.Forward(obs, nil)[0]
		diff := v - returns[i]
		loss += diff * diff
		critic.Accumulate(obs, nil, []float64{2 * diff / float64(n)}, grad)
	}
	if err := applyStep(critic, grad, opt); err != nil {
		return types.UpdateLog{}, err
	}
	return types.UpdateLog{Loss: loss / float64(n)}, nil
}

// DeepRegression fits an arbitrary network on (observation, action)
// inputs against vector targets under mean squared error. Learned
// dynamics models are trained this way.
type DeepRegression struct{}

// NewDeepRegression creates the generic regression updater.
func NewDeepRegression() *DeepRegression { return &DeepRegression{} }

// Update regresses model(obs, action) against targets row by row.
func (u *DeepRegression) Update(model *models.Network, batch *types.Batch, targets [][]float64, opt Optimizer) (types.UpdateLog, error) {
	n := batch.Len()
	if n == 0 {
		return types.UpdateLog{}, types.NewError(types.ErrEmptyBuffer, "regression on empty batch")
	}
	if len(targets) != n {
		return types.UpdateLog{}, types.NewErrorf(types.ErrShapeMismatch,
			"got %d target rows for %d transitions", len(targets), n)
	}

	outDim := model.OutDim()
	grad := model.NewGrad()
	gradOut := make([]float64, outDim)
	denom := float64(n * outDim)
	var loss float64
	for i, obs := range batch.Observations {
		var action []float64
		if i < len(batch.Actions) {
			action = batch.Actions[i]
		}
		out := model.Forward(obs, action)
		if len(targets[i]) != outDim {
			return types.UpdateLog{}, types.NewErrorf(types.ErrShapeMismatch,
				"target row %d has %d elements, model emits %d", i, len(targets[i]), outDim)
		}
		for k := range out {
			diff := out[k] - targets[i][k]
			loss += diff * diff
			gradOut[k] = 2 * diff / denom
		}
		model.Accumulate(obs, action, gradOut, grad)
	}
	if err := applyStep(model, grad, opt); err != nil {
		return types.UpdateLog{}, err
	}
	return types.UpdateLog{Loss: loss / denom}, nil
}
