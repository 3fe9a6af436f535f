package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/citrusfield/internal/core/usecases"
)

func argString(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

// buildSchema creates the GraphQL schema wired to our services.
// Field names follow the JSON tags of the domain records.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinatesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinates",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	boundaryType := graphql.NewList(graphql.NewList(graphql.Float))

	personType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PersonInfo",
		Fields: graphql.Fields{
			"name":         &graphql.Field{Type: graphql.String},
			"address":      &graphql.Field{Type: graphql.String},
			"phone":        &graphql.Field{Type: graphql.String},
			"birthDate":    &graphql.Field{Type: graphql.String},
			"gender":       &graphql.Field{Type: graphql.String},
			"relationship": &graphql.Field{Type: graphql.String},
			"description":  &graphql.Field{Type: graphql.String},
		},
	})

	subRecordType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SurveySubRecord",
		Fields: graphql.Fields{
			"id":                   &graphql.Field{Type: graphql.String},
			"category":             &graphql.Field{Type: graphql.String},
			"totalArea":            &graphql.Field{Type: graphql.Float},
			"cultivationArea":      &graphql.Field{Type: graphql.Float},
			"status":               &graphql.Field{Type: graphql.String},
			"cultivator":           &graphql.Field{Type: graphql.String},
			"hasFacility":          &graphql.Field{Type: graphql.Boolean},
			"type":                 &graphql.Field{Type: graphql.String},
			"varietyName":          &graphql.Field{Type: graphql.String},
			"plantingYear":         &graphql.Field{Type: graphql.String},
			"installYear":          &graphql.Field{Type: graphql.String},
			"treeAge":              &graphql.Field{Type: graphql.Int},
			"treeCount":            &graphql.Field{Type: graphql.Int},
			"spacing":              &graphql.Field{Type: graphql.String},
			"isHeated":             &graphql.Field{Type: graphql.Boolean},
			"otherType":            &graphql.Field{Type: graphql.String},
			"nonCultivationDetail": &graphql.Field{Type: graphql.String},
			"recordedAt":           &graphql.Field{Type: graphql.String},
		},
	})

	surveyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Survey",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"address":        &graphql.Field{Type: graphql.String},
			"ownerName":      &graphql.Field{Type: graphql.String},
			"ownerPhone":     &graphql.Field{Type: graphql.String},
			"variety":        &graphql.Field{Type: graphql.String},
			"area":           &graphql.Field{Type: graphql.Float},
			"status":         &graphql.Field{Type: graphql.String},
			"surveyDate":     &graphql.Field{Type: graphql.String},
			"coordinates":    &graphql.Field{Type: coordinatesType},
			"boundary":       &graphql.Field{Type: boundaryType},
			"ownerInfo":      &graphql.Field{Type: personType},
			"respondentInfo": &graphql.Field{Type: personType},
			"subRecords":     &graphql.Field{Type: graphql.NewList(subRecordType)},
		},
	})

	landChangeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LandChange",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"type":        &graphql.Field{Type: graphql.String},
			"address":     &graphql.Field{Type: graphql.String},
			"changeDate":  &graphql.Field{Type: graphql.String},
			"details":     &graphql.Field{Type: graphql.String},
			"coordinates": &graphql.Field{Type: coordinatesType},
			"boundary":    &graphql.Field{Type: boundaryType},
			"area":        &graphql.Field{Type: graphql.Float},
		},
	})

	civilRequestType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CivilRequest",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"type":           &graphql.Field{Type: graphql.String},
			"requestDate":    &graphql.Field{Type: graphql.String},
			"requester":      &graphql.Field{Type: graphql.String},
			"requesterPhone": &graphql.Field{Type: graphql.String},
			"address":        &graphql.Field{Type: graphql.String},
			"status":         &graphql.Field{Type: graphql.String},
			"details":        &graphql.Field{Type: graphql.String},
			"coordinates":    &graphql.Field{Type: coordinatesType},
			"boundary":       &graphql.Field{Type: boundaryType},
			"area":           &graphql.Field{Type: graphql.Float},
		},
	})

	dashboardType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Dashboard",
		Fields: graphql.Fields{
			"completed_surveys":      &graphql.Field{Type: graphql.Int},
			"total_surveys":          &graphql.Field{Type: graphql.Int},
			"land_changes":           &graphql.Field{Type: graphql.Int},
			"land_changes_pending":   &graphql.Field{Type: graphql.Int},
			"civil_requests":         &graphql.Field{Type: graphql.Int},
			"civil_requests_pending": &graphql.Field{Type: graphql.Int},
			"managed_farms":          &graphql.Field{Type: graphql.Int},
		},
	})

	idArgs := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"dashboard": &graphql.Field{
				Type:        dashboardType,
				Description: "Headline counters",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Dashboard.Stats(p.Context)
				},
			},
			"surveys": &graphql.Field{
				Type:        graphql.NewList(surveyType),
				Description: "Surveys matching the filters",
				Args: graphql.FieldConfigArgument{
					"q":       &graphql.ArgumentConfig{Type: graphql.String},
					"region":  &graphql.ArgumentConfig{Type: graphql.String},
					"variety": &graphql.ArgumentConfig{Type: graphql.String},
					"from":    &graphql.ArgumentConfig{Type: graphql.String},
					"to":      &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Surveys.List(p.Context, usecases.SurveyFilter{
						Query:   argString(p, "q"),
						Region:  argString(p, "region"),
						Variety: argString(p, "variety"),
						From:    argString(p, "from"),
						To:      argString(p, "to"),
					})
				},
			},
			"survey": &graphql.Field{
				Type:        surveyType,
				Description: "Get a survey by ID",
				Args:        idArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Surveys.Get(p.Context, argString(p, "id"))
				},
			},
			"landChanges": &graphql.Field{
				Type:        graphql.NewList(landChangeType),
				Description: "Cadastral change log",
				Args: graphql.FieldConfigArgument{
					"type":  &graphql.ArgumentConfig{Type: graphql.String},
					"month": &graphql.ArgumentConfig{Type: graphql.String},
					"sort":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "desc"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.LandChanges.List(p.Context, usecases.LandChangeFilter{
						Type:  argString(p, "type"),
						Month: argString(p, "month"),
						Sort:  argString(p, "sort"),
					})
				},
			},
			"landChange": &graphql.Field{
				Type:        landChangeType,
				Description: "Get a land change by ID",
				Args:        idArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.LandChanges.Get(p.Context, argString(p, "id"))
				},
			},
			"civilRequests": &graphql.Field{
				Type:        graphql.NewList(civilRequestType),
				Description: "Citizen requests matching the filters",
				Args: graphql.FieldConfigArgument{
					"type":   &graphql.ArgumentConfig{Type: graphql.String},
					"status": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "all"},
					"from":   &graphql.ArgumentConfig{Type: graphql.String},
					"to":     &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.CivilRequests.List(p.Context, usecases.CivilRequestFilter{
						Type:   argString(p, "type"),
						Status: argString(p, "status"),
						From:   argString(p, "from"),
						To:     argString(p, "to"),
					})
				},
			},
			"civilRequest": &graphql.Field{
				Type:        civilRequestType,
				Description: "Get a civil request by ID",
				Args:        idArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.CivilRequests.Get(p.Context, argString(p, "id"))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil || req.Query == "" {
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
