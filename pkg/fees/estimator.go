// Package fees provides the advisory gas estimator for bridge operations.
// Estimates never gate request creation.
package fees

import "github.com/propchain-labs/bridge-coordinator/pkg/asset"

// metadataGasPerByte is the marginal gas cost of carrying one byte of legal
// description to the destination ledger.
const metadataGasPerByte = 100

// Estimator computes advisory gas estimates for bridging an asset.
type Estimator struct {
	baseGas uint64
}

// NewEstimator creates an estimator with the given base gas limit per bridge.
func NewEstimator(baseGas uint64) *Estimator {
	return &Estimator{baseGas: baseGas}
}

// Estimate returns the advisory gas cost for bridging an asset with the given
// metadata: the configured base cost plus a metadata-size component.
func (e *Estimator) Estimate(meta asset.Metadata) uint64 {
	return e.baseGas + uint64(len(meta.LegalDescription))*metadataGasPerByte
}
