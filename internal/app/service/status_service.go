package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"netprofile/internal/app/port"
	"netprofile/internal/domain/entity"
	"netprofile/internal/infrastructure/configloader"
	"netprofile/internal/pkg/metrics"
	"netprofile/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	gweiDecimals  = 9
	etherDecimals = 18
)

// StatusServiceImpl implements port.ProfileStatusService.
type StatusServiceImpl struct {
	registry              port.ProfileRegistry
	clientProvider        port.NodeClientProvider
	logger                port.Logger
	metrics               *metrics.Metrics
	statusCache           *cache.Cache
	limiter               *rate.Limiter
	maxConcurrentRoutines int
	now                   func() time.Time

	// inflight serializes concurrent checks of the same profile.
	inflight sync.Map
}

// NewStatusService creates a new instance of StatusServiceImpl.
func NewStatusService(
	registry port.ProfileRegistry,
	cp port.NodeClientProvider,
	l port.Logger,
	config *configloader.Config,
	m *metrics.Metrics,
) *StatusServiceImpl {
	perf := config.Performance
	maxRoutines := perf.MaxConcurrentRoutines
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	return &StatusServiceImpl{
		registry:              registry,
		clientProvider:        cp,
		logger:                l,
		metrics:               m,
		statusCache:           cache.New(perf.StatusCacheTTL(), 2*perf.StatusCacheTTL()),
		limiter:               rate.NewLimiter(rate.Limit(perf.RateLimit), perf.BurstLimit),
		maxConcurrentRoutines: maxRoutines,
		now:                   time.Now,
	}
}

// CheckProfile checks a single profile against its node.
func (s *StatusServiceImpl) CheckProfile(ctx context.Context, name string) (entity.ProfileStatus, error) {
	profile, ok := s.registry.GetProfileByName(name)
	if !ok {
		return entity.ProfileStatus{}, fmt.Errorf("%w: %s", entity.ErrProfileNotFound, name)
	}

	lock, _ := s.inflight.LoadOrStore(name, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	if cached, found := s.statusCache.Get(name); found {
		s.metrics.CacheHit()
		s.logger.Debug("Returning cached profile status", "profile", name)
		return cached.(entity.ProfileStatus), nil
	}

	status := s.check(ctx, profile)
	if ctx.Err() == nil {
		s.statusCache.Set(name, status, cache.DefaultExpiration)
	}
	return status, nil
}

// CheckAll checks the named profiles concurrently, or every profile when names is empty.
// Unknown names fail the whole call before any node is probed. Results are sorted by name.
func (s *StatusServiceImpl) CheckAll(ctx context.Context, names []string) ([]entity.ProfileStatus, error) {
	if len(names) == 0 {
		names = s.registry.Names()
	} else {
		names = utils.SplitCSV(strings.Join(names, ","))
		sort.Strings(names)
	}

	var unknown []string
	for _, name := range names {
		if _, ok := s.registry.GetProfileByName(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrProfileNotFound, strings.Join(unknown, ", "))
	}

	s.logger.Debug("Checking profiles", "profiles", names)
	statuses := make([]entity.ProfileStatus, len(names))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.maxConcurrentRoutines)
	for i, name := range names {
		i, name := i, name
		eg.Go(func() error {
			if err := s.limiter.Wait(egCtx); err != nil {
				return fmt.Errorf("rate limiter wait for profile %s: %w", name, err)
			}
			status, err := s.CheckProfile(egCtx, name)
			if err != nil {
				return err
			}
			statuses[i] = status
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		s.logger.Error("Profile checks aborted", "error", err)
		return nil, err
	}

	healthy := 0
	for _, st := range statuses {
		if st.Healthy {
			healthy++
		}
	}
	s.logger.Info("Profile checks complete", "count", len(statuses), "healthy", healthy)
	return statuses, nil
}

// Invalidate drops the cached status of a profile.
func (s *StatusServiceImpl) Invalidate(name string) {
	s.statusCache.Delete(name)
}

func (s *StatusServiceImpl) check(ctx context.Context, profile entity.NetworkProfile) entity.ProfileStatus {
	start := s.now()
	status := entity.ProfileStatus{
		ProfileName:         profile.Name,
		Endpoint:            profile.Endpoint(),
		ExpectedNetworkID:   profile.NetworkID,
		ProfileGas:          profile.Gas,
		ProfileGasPriceGwei: profile.GasPriceGwei(),
		Warnings:            profile.Warnings(),
		CheckedAt:           start.UTC(),
	}

	if err := profile.Validate(); err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			status.ValidationErrors = verr.Fields
		}
		s.logger.Warn("Profile is invalid, skipping probe", "profile", profile.Name, "error", err)
		s.metrics.ObserveProbe(profile.Name, metrics.ResultInvalid, s.now().Sub(start))
		return status
	}
	status.Valid = true

	client, err := s.clientProvider.GetClient(ctx, profile)
	if err != nil {
		status.Errors = append(status.Errors, s.profileError(profile, "", err))
		s.metrics.ObserveProbe(profile.Name, metrics.ResultUnreachable, s.now().Sub(start))
		return status
	}

	snapshot, err := client.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("Node probe failed", "profile", profile.Name, "endpoint", status.Endpoint, "error", err)
		status.Errors = append(status.Errors, s.profileError(profile, "", err))
		s.metrics.ObserveProbe(profile.Name, metrics.ResultUnreachable, s.now().Sub(start))
		return status
	}
	status.Reachable = true

	for _, failed := range snapshot.Failed() {
		if failed.Type == entity.ClientVersionRequest {
			s.logger.Debug("Node does not report its client version", "profile", profile.Name, "error", failed.Error)
			continue
		}
		s.logger.Warn("Probe call failed", "profile", profile.Name, "method", failed.Type.Method(), "error", failed.Error)
		status.Errors = append(status.Errors, s.profileError(profile, failed.Type.Method(), failed.Error))
	}

	s.applySnapshot(&status, profile, snapshot)

	status.Healthy = status.Reachable && status.NetworkIDMatch && status.GasWithinBlockLimit && len(status.Errors) == 0

	result := metrics.ResultHealthy
	if !status.Healthy {
		result = metrics.ResultUnhealthy
	}
	s.metrics.ObserveProbe(profile.Name, result, s.now().Sub(start))
	s.logger.Debug("Profile checked", "profile", profile.Name, "healthy", status.Healthy, "network_id", status.ReportedNetworkID)
	return status
}

func (s *StatusServiceImpl) applySnapshot(status *entity.ProfileStatus, profile entity.NetworkProfile, snapshot entity.NodeSnapshot) {
	status.ReportedNetworkID = snapshot.NetworkID
	status.NetworkIDMatch = snapshot.NetworkID != "" && profile.MatchesNetworkID(snapshot.NetworkID)
	if !status.NetworkIDMatch && snapshot.NetworkID != "" {
		s.logger.Warn("Network id mismatch", "profile", profile.Name, "expected", profile.NetworkID, "reported", snapshot.NetworkID)
	}

	if snapshot.ChainID != nil {
		status.ChainID = snapshot.ChainID.String()
	}
	status.ClientVersion = snapshot.ClientVersion
	status.BlockNumber = snapshot.BlockNumber
	status.BlockGasLimit = snapshot.BlockGasLimit
	status.GasWithinBlockLimit = snapshot.BlockGasLimit > 0 && profile.Gas <= snapshot.BlockGasLimit

	if snapshot.GasPrice != nil {
		formatted, err := utils.FormatBigInt(snapshot.GasPrice, gweiDecimals)
		if err != nil {
			s.logger.Error("Failed to format node gas price", "profile", profile.Name, "error", err)
		}
		status.NodeGasPriceGwei = formatted
	}

	if snapshot.Balance != nil {
		formatted, err := utils.FormatBigInt(snapshot.Balance, etherDecimals)
		if err != nil {
			s.logger.Error("Failed to format sender balance", "profile", profile.Name, "error", err)
		}
		status.Sender = &entity.SenderBalance{
			Address:          profile.From,
			Amount:           snapshot.Balance,
			Wei:              snapshot.Balance.String(),
			FormattedBalance: formatted,
		}
	}
}

func (s *StatusServiceImpl) profileError(profile entity.NetworkProfile, method string, err error) entity.ProfileError {
	return entity.ProfileError{
		ProfileName: profile.Name,
		Endpoint:    profile.Endpoint(),
		Method:      method,
		Message:     err.Error(),
	}
}

var _ port.ProfileStatusService = (*StatusServiceImpl)(nil)
