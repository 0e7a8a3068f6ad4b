package custody

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"github.com/rom1247/ntf-market/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AssetVault tracks the exclusive holder of each asset. All transfers are
// executed on behalf of the configured operator (the auction engine's
// account): the operator may always release assets it holds itself, but
// pulling an asset from another principal requires that principal to have
// approved the operator first.
type AssetVault struct {
	operator uuid.UUID

	mu        sync.Mutex
	holders   map[domain.AssetRef]uuid.UUID
	approvals map[domain.AssetRef]uuid.UUID // holder-granted operator approval
}

func NewAssetVault(operator uuid.UUID) *AssetVault {
	return &AssetVault{
		operator:  operator,
		holders:   make(map[domain.AssetRef]uuid.UUID),
		approvals: make(map[domain.AssetRef]uuid.UUID),
	}
}

// Register records the initial holder of an asset.
func (v *AssetVault) Register(asset domain.AssetRef, holder uuid.UUID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.holders[asset]; exists {
		return fmt.Errorf("asset %s is already registered", asset)
	}
	v.holders[asset] = holder
	return nil
}

// Approve lets the current holder authorize the operator to pull the asset.
func (v *AssetVault) Approve(asset domain.AssetRef, holder, operator uuid.UUID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.holders[asset] != holder {
		return fmt.Errorf("%w: %s does not hold %s", domain.ErrTransferFailed, holder, asset)
	}
	v.approvals[asset] = operator
	return nil
}

// HolderOf returns the current holder of an asset.
func (v *AssetVault) HolderOf(asset domain.AssetRef) (uuid.UUID, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	h, ok := v.holders[asset]
	return h, ok
}

// TransferCustody implements domain.AssetCustody. Fails when from is not the
// current holder, or when the move is a pull from a third party that never
// approved the operator. Any granted approval is consumed by the transfer.
func (v *AssetVault) TransferCustody(_ context.Context, asset domain.AssetRef, from, to uuid.UUID) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	holder, ok := v.holders[asset]
	if !ok {
		return fmt.Errorf("%w: unknown asset %s", domain.ErrTransferFailed, asset)
	}
	if holder != from {
		return fmt.Errorf("%w: %s does not hold %s", domain.ErrTransferFailed, from, asset)
	}
	if from != v.operator && v.approvals[asset] != v.operator {
		return fmt.Errorf("%w: custody transfer of %s was not approved", domain.ErrTransferFailed, asset)
	}

	v.holders[asset] = to
	delete(v.approvals, asset)

	log.Debug("asset custody transferred",
		zap.String("asset", asset.String()),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
	return nil
}
