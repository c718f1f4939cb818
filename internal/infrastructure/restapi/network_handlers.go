package restapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"netprofile/internal/app/port"
	"netprofile/internal/domain/entity"
	"netprofile/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every API response.
type APIResponse struct {
	Data          any      `json:"data"`
	Errors        []string `json:"errors,omitempty"`
	StatusMessage string   `json:"status_message"`
}

// NetworkHandler handles HTTP requests about network profiles.
type NetworkHandler struct {
	registry  port.ProfileRegistry
	statusSvc port.ProfileStatusService
	gasSvc    port.GasReferenceService
	logger    port.Logger
}

// NewNetworkHandler creates a new NetworkHandler.
func NewNetworkHandler(
	registry port.ProfileRegistry,
	statusSvc port.ProfileStatusService,
	gasSvc port.GasReferenceService,
	logger port.Logger,
) *NetworkHandler {
	return &NetworkHandler{
		registry:  registry,
		statusSvc: statusSvc,
		gasSvc:    gasSvc,
		logger:    logger,
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	resp := APIResponse{StatusMessage: message}
	if err != nil {
		resp.Errors = []string{err.Error()}
	}
	c.JSON(code, resp)
}

// ListNetworksHandler returns every profile.
// Query params: ?network_id=3 keeps the profiles accepting that network id.
func (h *NetworkHandler) ListNetworksHandler(c *gin.Context) {
	var profiles []entity.NetworkProfile
	if networkID := c.Query("network_id"); networkID != "" {
		profiles = h.registry.GetProfilesByNetworkID(networkID)
	} else {
		profiles = h.registry.GetAllProfiles()
	}
	if profiles == nil {
		profiles = []entity.NetworkProfile{}
	}
	c.JSON(http.StatusOK, APIResponse{
		Data:          gin.H{"networks": profiles},
		StatusMessage: fmt.Sprintf("%d network profiles configured.", len(profiles)),
	})
}

// GetNetworkHandler returns a single profile.
func (h *NetworkHandler) GetNetworkHandler(c *gin.Context) {
	name := c.Param("name")
	profile, ok := h.registry.GetProfileByName(name)
	if !ok {
		respondError(c, http.StatusNotFound, "Network profile not found.", fmt.Errorf("%w: %s", entity.ErrProfileNotFound, name))
		return
	}

	resp := APIResponse{Data: profile, StatusMessage: "Network profile retrieved successfully."}
	if err := profile.Validate(); err != nil {
		resp.Errors = []string{err.Error()}
		resp.StatusMessage = "Network profile retrieved. The profile is invalid."
	}
	c.JSON(http.StatusOK, resp)
}

// GetNetworkStatusHandler checks a single profile against its node.
// Query params: ?refresh=true bypasses the status cache.
func (h *NetworkHandler) GetNetworkStatusHandler(c *gin.Context) {
	name := c.Param("name")
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		h.statusSvc.Invalidate(name)
	}

	status, err := h.statusSvc.CheckProfile(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, entity.ErrProfileNotFound) {
			respondError(c, http.StatusNotFound, "Network profile not found.", err)
			return
		}
		h.logger.Error("Failed to check network profile", "profile", name, "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to check network profile.", err)
		return
	}

	resp := APIResponse{Data: status}
	for _, e := range status.Errors {
		resp.Errors = append(resp.Errors, e.Message)
	}
	if status.Healthy {
		resp.StatusMessage = "Network profile is healthy."
	} else {
		resp.StatusMessage = "Network profile is unhealthy."
	}
	c.JSON(http.StatusOK, resp)
}

// GetAllStatusesHandler checks several profiles.
// Query params: ?networks=name1,name2 restricts the check, all profiles otherwise.
func (h *NetworkHandler) GetAllStatusesHandler(c *gin.Context) {
	names := utils.SplitCSV(c.Query("networks"))

	statuses, err := h.statusSvc.CheckAll(c.Request.Context(), names)
	if err != nil {
		if errors.Is(err, entity.ErrProfileNotFound) {
			respondError(c, http.StatusNotFound, "Unknown network profiles requested.", err)
			return
		}
		h.logger.Error("Failed to check network profiles", "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to check network profiles.", err)
		return
	}

	healthy := 0
	var serviceErrors []string
	for _, st := range statuses {
		if st.Healthy {
			healthy++
		}
		for _, e := range st.Errors {
			serviceErrors = append(serviceErrors, fmt.Sprintf("%s: %s", st.ProfileName, e.Message))
		}
	}

	c.JSON(http.StatusOK, APIResponse{
		Data:          gin.H{"statuses": statuses},
		Errors:        serviceErrors,
		StatusMessage: fmt.Sprintf("%d of %d network profiles are healthy.", healthy, len(statuses)),
	})
}

// GetNetworkGasHandler compares the profile gas price with the reference gas oracle.
func (h *NetworkHandler) GetNetworkGasHandler(c *gin.Context) {
	name := c.Param("name")
	profile, ok := h.registry.GetProfileByName(name)
	if !ok {
		respondError(c, http.StatusNotFound, "Network profile not found.", fmt.Errorf("%w: %s", entity.ErrProfileNotFound, name))
		return
	}

	cmp, err := h.gasSvc.Compare(c.Request.Context(), profile)
	if err != nil {
		if errors.Is(err, entity.ErrGasOracleDisabled) {
			respondError(c, http.StatusServiceUnavailable, "Gas oracle is not configured.", err)
			return
		}
		h.logger.Warn("Gas reference comparison failed", "profile", name, "error", err)
		respondError(c, http.StatusBadGateway, "Failed to fetch the gas reference.", err)
		return
	}

	msg := "Profile gas price is within tolerance of the reference."
	if cmp.Drifted {
		msg = "Profile gas price drifted from the reference."
	}
	c.JSON(http.StatusOK, APIResponse{Data: cmp, StatusMessage: msg})
}
