package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autoarbitrage/internal/database"
	"autoarbitrage/internal/models"
	"autoarbitrage/internal/util"
	"autoarbitrage/internal/validation"
)

type VehicleHandler struct {
	db *database.Database
}

func NewVehicleHandler(db *database.Database) *VehicleHandler {
	return &VehicleHandler{db: db}
}

// ListVehicles returns all stored vehicles, most recently updated first
// @Summary List vehicles
// @Tags vehicles
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/vehicles [get]
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.db.ListAllVehicles()
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load vehicles", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(vehicles),
		"vehicles": vehicles,
	})
}

// GetVehicleHistory returns one vehicle with its full price history
// @Summary Get vehicle price history
// @Tags vehicles
// @Produce json
// @Param plate path string true "Number plate"
// @Success 200 {object} models.VehicleHistory
// @Failure 404 {object} map[string]interface{}
// @Router /api/vehicles/{plate} [get]
func (h *VehicleHandler) GetVehicleHistory(c *gin.Context) {
	plate := c.Param("plate")
	if err := validation.ValidatePlate(plate); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	history, err := h.db.GetHistory(validation.NormalizePlate(plate))
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load vehicle", err)
		return
	}
	if history == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Vehicle not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"vehicle": history,
	})
}

// ListAuctions returns the auctions seen by the most recent catalog scrapes
// @Summary List active auctions
// @Tags auctions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/auctions [get]
func (h *VehicleHandler) ListAuctions(c *gin.Context) {
	auctions, err := h.db.ListActiveAuctions()
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load auctions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(auctions),
		"auctions": auctions,
	})
}

// GetWatchlist returns the authenticated user's watched vehicles
// @Summary Get watchlist
// @Tags watchlist
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/watchlist [get]
func (h *VehicleHandler) GetWatchlist(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	vehicles, err := h.db.ListWatchlist(user.ID)
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load watchlist", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(vehicles),
		"vehicles": vehicles,
	})
}

// AddToWatchlist puts a plate on the authenticated user's watchlist
// @Summary Watch a vehicle
// @Tags watchlist
// @Produce json
// @Param plate path string true "Number plate"
// @Success 200 {object} map[string]interface{}
// @Router /api/watchlist/{plate} [post]
func (h *VehicleHandler) AddToWatchlist(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	plate := c.Param("plate")
	if err := validation.ValidatePlate(plate); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if err := h.db.AddToWatchlist(user.ID, validation.NormalizePlate(plate)); err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to update watchlist", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveFromWatchlist drops a plate from the authenticated user's watchlist
// @Summary Unwatch a vehicle
// @Tags watchlist
// @Produce json
// @Param plate path string true "Number plate"
// @Success 200 {object} map[string]interface{}
// @Router /api/watchlist/{plate} [delete]
func (h *VehicleHandler) RemoveFromWatchlist(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	plate := c.Param("plate")
	if err := validation.ValidatePlate(plate); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if err := h.db.RemoveFromWatchlist(user.ID, validation.NormalizePlate(plate)); err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to update watchlist", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
