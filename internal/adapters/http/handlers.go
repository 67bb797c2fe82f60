package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
	"github.com/samirrijal/pinmeasure/internal/pkg/config"
	"github.com/samirrijal/pinmeasure/internal/pkg/geospatial"
)

// MapConfigResponse is what the front end needs to draw the initial map.
type MapConfigResponse struct {
	config.MapConfig
	BaseLayers []domain.BaseLayer `json:"base_layers"`
	Modes      []domain.Mode      `json:"modes"`
}

// MeasureRequest is the body of a stateless measurement.
type MeasureRequest struct {
	Mode   string            `json:"mode"`
	Points []domain.GeoPoint `json:"points"`
}

// MeasureResponse is the result of a stateless measurement. Points reflect
// ring closure in area mode.
type MeasureResponse struct {
	Measurement domain.Measurement `json:"measurement"`
	Points      []domain.GeoPoint  `json:"points"`
	Bounds      *domain.Bounds     `json:"bounds,omitempty"`
}

// IndexedPoint is a pin with its position in the sequence.
type IndexedPoint struct {
	Index int     `json:"index"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

type createSessionRequest struct {
	Mode string `json:"mode"`
}

type setModeRequest struct {
	Mode string `json:"mode"`
}

type viewRequest struct {
	BaseLayer     domain.BaseLayer `json:"base_layer"`
	ToggleSidebar bool             `json:"toggle_sidebar"`
}

// MapConfigHandler returns the map defaults.
func MapConfigHandler(deps *Dependencies) fiber.Handler {
	resp := MapConfigResponse{
		MapConfig:  deps.Map,
		BaseLayers: []domain.BaseLayer{domain.BaseLayerStreets, domain.BaseLayerSatellite, domain.BaseLayerTerrain},
		Modes:      []domain.Mode{domain.ModePath, domain.ModeArea},
	}
	return func(c *fiber.Ctx) error {
		return c.JSON(resp)
	}
}

// MeasureHandler measures a point list without creating a session.
func MeasureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req MeasureRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		m, points, err := deps.Sessions.Measure(c.UserContext(), domain.Mode(req.Mode), req.Points)
		if err != nil {
			return errFromService(c, err)
		}

		resp := MeasureResponse{Measurement: m, Points: points}
		if len(points) > 0 {
			b := geospatial.Bounds(points)
			resp.Bounds = &b
		}
		return c.JSON(resp)
	}
}

// CreateSessionHandler starts a new measurement session. The body is optional.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createSessionRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}

		var mode domain.Mode
		if req.Mode != "" {
			m, err := domain.ParseMode(req.Mode)
			if err != nil {
				return errFromService(c, err)
			}
			mode = m
		}

		sess, err := deps.Sessions.Create(c.UserContext(), mode)
		if err != nil {
			return errFromService(c, err)
		}

		c.Location("/v1/sessions/" + sess.ID)
		return c.Status(fiber.StatusCreated).JSON(sess)
	}
}

// GetSessionHandler returns a session snapshot.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(sess)
	}
}

// DeleteSessionHandler discards a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFromService(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListPointsHandler returns a session's pins, paginated.
func ListPointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}

		points := make([]IndexedPoint, len(sess.Points))
		for i, p := range sess.Points {
			points[i] = IndexedPoint{Index: i, Lat: p.Lat, Lon: p.Lon}
		}

		offset, limit := pageParams(c)
		pg := Pagination{Offset: offset, Limit: limit, Total: len(points)}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: paginate(points, offset, limit), Pagination: pg})
	}
}

// AddPointHandler drops a pin.
func AddPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p domain.GeoPoint
		if err := c.BodyParser(&p); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		return dispatch(c, deps, domain.Command{Type: domain.CmdAddPoint, Point: &p})
	}
}

// MovePointHandler drags the pin at :index to a new position.
func MovePointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		idx, err := c.ParamsInt("index")
		if err != nil {
			return errBadRequest(c, "index must be an integer")
		}
		var p domain.GeoPoint
		if err := c.BodyParser(&p); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		return dispatch(c, deps, domain.Command{Type: domain.CmdMovePoint, Index: &idx, Point: &p})
	}
}

// RemovePointHandler deletes the pin at :index.
func RemovePointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		idx, err := c.ParamsInt("index")
		if err != nil {
			return errBadRequest(c, "index must be an integer")
		}
		return dispatch(c, deps, domain.Command{Type: domain.CmdRemovePoint, Index: &idx})
	}
}

// SetModeHandler switches between distance and area.
func SetModeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req setModeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		mode, err := domain.ParseMode(req.Mode)
		if err != nil {
			return errFromService(c, err)
		}
		return dispatch(c, deps, domain.Command{Type: domain.CmdSetMode, Mode: mode})
	}
}

// ClearHandler removes every pin.
func ClearHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return dispatch(c, deps, domain.Command{Type: domain.CmdClear})
	}
}

// ViewHandler changes presentation state. Both fields are optional; when both
// are set they are applied together as one change, base layer first.
func ViewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req viewRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		var cmds []domain.Command
		if req.BaseLayer != "" {
			cmds = append(cmds, domain.Command{Type: domain.CmdSetBaseLayer, BaseLayer: req.BaseLayer})
		}
		if req.ToggleSidebar {
			cmds = append(cmds, domain.Command{Type: domain.CmdToggleSidebar})
		}
		if len(cmds) == 0 {
			return errBadRequest(c, "base_layer or toggle_sidebar is required")
		}

		sess, err := deps.Sessions.DispatchAll(c.UserContext(), c.Params("id"), cmds...)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(sess)
	}
}

// CommandHandler applies a raw command message.
func CommandHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cmd domain.Command
		if err := c.BodyParser(&cmd); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		return dispatch(c, deps, cmd)
	}
}

// GeoJSONHandler exports the session as a GeoJSON FeatureCollection.
func GeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fc, err := deps.Sessions.GeoJSON(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		data, err := fc.MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

func dispatch(c *fiber.Ctx, deps *Dependencies, cmd domain.Command) error {
	sess, err := deps.Sessions.Dispatch(c.UserContext(), c.Params("id"), cmd)
	if err != nil {
		return errFromService(c, err)
	}
	return c.JSON(sess)
}
