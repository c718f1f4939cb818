package service

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"netprofile/internal/app/port"
	"netprofile/internal/client"
	"netprofile/internal/domain/entity"
	"netprofile/internal/infrastructure/configloader"
	"netprofile/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
)

const referenceCacheKey = "gas_reference"

// gasReferenceServiceImpl implements port.GasReferenceService
type gasReferenceServiceImpl struct {
	oracle         client.GasOracleClient
	logger         port.Logger
	referenceCache *cache.Cache
	tolerance      float64
	enabled        bool
}

// NewGasReferenceService creates a new instance of gasReferenceServiceImpl.
// A nil oracle or an empty oracle base URL disables the service.
func NewGasReferenceService(
	oracle client.GasOracleClient,
	l port.Logger,
	config *configloader.Config,
) port.GasReferenceService {
	ttl := config.GasOracle.CacheTTL()
	s := &gasReferenceServiceImpl{
		oracle:         oracle,
		logger:         l,
		referenceCache: cache.New(ttl, 2*ttl),
		tolerance:      config.GasOracle.Tolerance,
		enabled:        oracle != nil && config.GasOracle.Enabled(),
	}
	if s.enabled {
		l.Info("GasReferenceService initialized", "source", config.GasOracle.BaseURL, "cache_ttl", ttl.String(), "tolerance", s.tolerance)
	} else {
		l.Info("GasReferenceService disabled, no gas oracle configured")
	}
	return s
}

// Reference returns the reference gas prices, served from cache while fresh.
func (s *gasReferenceServiceImpl) Reference(ctx context.Context) (entity.GasReference, error) {
	if !s.enabled {
		return entity.GasReference{}, entity.ErrGasOracleDisabled
	}
	if cached, found := s.referenceCache.Get(referenceCacheKey); found {
		s.logger.Debug("Returning cached gas reference")
		return cached.(entity.GasReference), nil
	}

	ref, err := s.oracle.GetGasOracle(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch gas reference", "error", err)
		return entity.GasReference{}, fmt.Errorf("failed to fetch gas reference: %w", err)
	}
	s.referenceCache.Set(referenceCacheKey, ref, cache.DefaultExpiration)
	s.logger.Debug("Gas reference cached", "propose_gwei", ref.ProposeGwei, "last_block", ref.LastBlock)
	return ref, nil
}

// Compare rates the profile gas price against the reference propose price.
// Drifted is set when the ratio lies outside 1 ± tolerance.
func (s *gasReferenceServiceImpl) Compare(ctx context.Context, profile entity.NetworkProfile) (entity.GasComparison, error) {
	ref, err := s.Reference(ctx)
	if err != nil {
		return entity.GasComparison{}, err
	}

	profileGwei := utils.WeiToGwei(new(big.Int).SetUint64(profile.GasPrice))
	cmp := entity.GasComparison{
		ProfileName: profile.Name,
		ProfileGwei: profileGwei,
		Reference:   ref,
		Tolerance:   s.tolerance,
	}
	if ref.ProposeGwei > 0 {
		cmp.Ratio = profileGwei / ref.ProposeGwei
		cmp.Drifted = math.Abs(cmp.Ratio-1) > s.tolerance
	}
	if wei := utils.GweiToWei(ref.ProposeGwei); wei.IsUint64() {
		cmp.RecommendedWei = wei.Uint64()
	}

	if cmp.Drifted {
		s.logger.Warn("Profile gas price drifted from reference",
			"profile", profile.Name, "profile_gwei", profileGwei, "reference_gwei", ref.ProposeGwei, "ratio", cmp.Ratio)
	}
	return cmp, nil
}
