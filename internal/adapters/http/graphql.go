package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the session service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	measurementType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Measurement",
		Fields: graphql.Fields{
			"mode":  &graphql.Field{Type: graphql.String},
			"value": &graphql.Field{Type: graphql.Float},
			"unit":  &graphql.Field{Type: graphql.String},
			"label": &graphql.Field{Type: graphql.String},
		},
	})

	appStateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AppState",
		Fields: graphql.Fields{
			"sidebar_open": &graphql.Field{Type: graphql.Boolean},
			"base_layer":   &graphql.Field{Type: graphql.String},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"mode":        &graphql.Field{Type: graphql.String},
			"points":      &graphql.Field{Type: graphql.NewList(geoPointType)},
			"measurement": &graphql.Field{Type: measurementType},
			"state":       &graphql.Field{Type: appStateType},
			"version":     &graphql.Field{Type: graphql.Int},
			"created_at":  &graphql.Field{Type: graphql.DateTime},
			"updated_at":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	measureResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MeasureResult",
		Fields: graphql.Fields{
			"measurement": &graphql.Field{Type: measurementType},
			"points":      &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	pointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lon": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	commandInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CommandInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"type":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"point":      &graphql.InputObjectFieldConfig{Type: pointInput},
			"index":      &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"mode":       &graphql.InputObjectFieldConfig{Type: graphql.String},
			"base_layer": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Snapshot of a measurement session",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return deps.Sessions.Get(p.Context, id)
				},
			},
			"measure": &graphql.Field{
				Type:        measureResultType,
				Description: "Measure a point list without a session",
				Args: graphql.FieldConfigArgument{
					"mode":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.ModePath)},
					"points": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(pointInput)))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					mode, _ := p.Args["mode"].(string)
					points, err := pointsArg(p.Args["points"])
					if err != nil {
						return nil, err
					}
					m, closed, err := deps.Sessions.Measure(p.Context, domain.Mode(mode), points)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{"measurement": m, "points": closed}, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createSession": &graphql.Field{
				Type: sessionType,
				Args: graphql.FieldConfigArgument{
					"mode": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var mode domain.Mode
					if s, ok := p.Args["mode"].(string); ok && s != "" {
						m, err := domain.ParseMode(s)
						if err != nil {
							return nil, err
						}
						mode = m
					}
					return deps.Sessions.Create(p.Context, mode)
				},
			},
			"dispatch": &graphql.Field{
				Type:        sessionType,
				Description: "Apply one command to a session and return the new snapshot",
				Args: graphql.FieldConfigArgument{
					"session_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"command":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(commandInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["session_id"].(string)
					cmd, err := commandArg(p.Args["command"])
					if err != nil {
						return nil, err
					}
					return deps.Sessions.Dispatch(p.Context, id, cmd)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func pointArg(v interface{}) (domain.GeoPoint, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("%w: point must be an object", domain.ErrInvalidCoordinate)
	}
	lat, _ := m["lat"].(float64)
	lon, _ := m["lon"].(float64)
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

func pointsArg(v interface{}) ([]domain.GeoPoint, error) {
	list, _ := v.([]interface{})
	points := make([]domain.GeoPoint, 0, len(list))
	for _, item := range list {
		p, err := pointArg(item)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func commandArg(v interface{}) (domain.Command, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return domain.Command{}, fmt.Errorf("%w: command must be an object", domain.ErrInvalidCommand)
	}

	var cmd domain.Command
	t, _ := m["type"].(string)
	cmd.Type = domain.CommandType(t)
	if raw, ok := m["point"]; ok && raw != nil {
		p, err := pointArg(raw)
		if err != nil {
			return domain.Command{}, err
		}
		cmd.Point = &p
	}
	if idx, ok := m["index"].(int); ok {
		cmd.Index = &idx
	}
	if mode, ok := m["mode"].(string); ok {
		cmd.Mode = domain.Mode(mode)
	}
	if layer, ok := m["base_layer"].(string); ok {
		cmd.BaseLayer = domain.BaseLayer(layer)
	}
	return cmd, nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
