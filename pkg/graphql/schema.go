package graphql

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/rinexis/authreview/pkg/analysis"
)

// BuildSchema builds the read-only query schema over the latest analysis
// report. Field names mirror the REST API's JSON, so a client can switch
// between the two without renaming anything.
func BuildSchema(results *analysis.ResultStore) (graphql.Schema, error) {
	functionMatchType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FunctionMatch",
		Fields: graphql.Fields{
			"functionId": &graphql.Field{Type: graphql.String},
			"actions":    &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	exposureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Exposure",
		Fields: graphql.Fields{
			"riskId":           &graphql.Field{Type: graphql.String},
			"role":             &graphql.Field{Type: graphql.String},
			"riskType":         &graphql.Field{Type: graphql.String},
			"riskLevel":        &graphql.Field{Type: graphql.String},
			"description":      &graphql.Field{Type: graphql.String},
			"matchedFunctions": &graphql.Field{Type: graphql.NewList(functionMatchType)},
		},
	})

	levelSliceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LevelSlice",
		Fields: graphql.Fields{
			"level":      &graphql.Field{Type: graphql.String},
			"count":      &graphql.Field{Type: graphql.Int},
			"percentage": &graphql.Field{Type: graphql.Float},
			"defined":    &graphql.Field{Type: graphql.Boolean},
		},
	})

	nameCountType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NameCount",
		Fields: graphql.Fields{
			"name":  &graphql.Field{Type: graphql.String},
			"count": &graphql.Field{Type: graphql.Int},
		},
	})

	roleScoreType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RoleScore",
		Fields: graphql.Fields{
			"role":  &graphql.Field{Type: graphql.String},
			"score": &graphql.Field{Type: graphql.Int},
			"count": &graphql.Field{Type: graphql.Int},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Summary",
		Fields: graphql.Fields{
			"totalRisks":          &graphql.Field{Type: graphql.Int},
			"sodRisks":            &graphql.Field{Type: graphql.Int},
			"criticalRisks":       &graphql.Field{Type: graphql.Int},
			"uniqueSoDRisks":      &graphql.Field{Type: graphql.Int},
			"uniqueCriticalRisks": &graphql.Field{Type: graphql.Int},
			"totalRoles":          &graphql.Field{Type: graphql.Int},
			"byRiskLevel":         &graphql.Field{Type: graphql.NewList(levelSliceType)},
			"byRole":              &graphql.Field{Type: graphql.NewList(nameCountType)},
			"byFunction":          &graphql.Field{Type: graphql.NewList(nameCountType)},
			"byBusinessProcess":   &graphql.Field{Type: graphql.NewList(nameCountType)},
			"topRiskyRoles":       &graphql.Field{Type: graphql.NewList(roleScoreType)},
			"highestRiskRole":     &graphql.Field{Type: graphql.String},
			"mostAffectedProcess": &graphql.Field{Type: graphql.String},
		},
	})

	reportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Report",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"runAt":          &graphql.Field{Type: graphql.DateTime},
			"riskDatasetId":  &graphql.Field{Type: graphql.String},
			"roleDatasetId":  &graphql.Field{Type: graphql.String},
			"riskRowsRead":   &graphql.Field{Type: graphql.Int},
			"roleRowsRead":   &graphql.Field{Type: graphql.Int},
			"durationMillis": &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"report": &graphql.Field{
				Type: reportType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					report, err := results.Latest()
					if errors.Is(err, analysis.ErrNoResult) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return report, nil
				},
			},
			"summary": &graphql.Field{
				Type: summaryType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					report, err := results.Latest()
					if errors.Is(err, analysis.ErrNoResult) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return report.Result.Summary, nil
				},
			},
			"roles": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					report, err := results.Latest()
					if errors.Is(err, analysis.ErrNoResult) {
						return []string{}, nil
					}
					if err != nil {
						return nil, err
					}
					return report.Result.Roles, nil
				},
			},
			"exposures": &graphql.Field{
				Type: graphql.NewList(exposureType),
				Args: graphql.FieldConfigArgument{
					"role": &graphql.ArgumentConfig{
						Type: graphql.String,
					},
					"riskType": &graphql.ArgumentConfig{
						Type: graphql.String,
					},
					"limit": &graphql.ArgumentConfig{
						Type: graphql.Int,
					},
				},
				Resolve: createExposuresResolver(results),
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}

	return schema, nil
}

// createExposuresResolver creates the resolver for the exposures query. The
// role and riskType arguments are exact-match filters; limit truncates the
// list after filtering.
func createExposuresResolver(results *analysis.ResultStore) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		report, err := results.Latest()
		if errors.Is(err, analysis.ErrNoResult) {
			return []analysis.Exposure{}, nil
		}
		if err != nil {
			return nil, err
		}

		exposures := report.Result.Exposures

		if role, ok := p.Args["role"].(string); ok && role != "" && role != analysis.RoleFilterAll {
			filtered := make([]analysis.Exposure, 0)
			for _, exp := range exposures {
				if exp.Role == role {
					filtered = append(filtered, exp)
				}
			}
			exposures = filtered
		}

		if riskType, ok := p.Args["riskType"].(string); ok && riskType != "" {
			filtered := make([]analysis.Exposure, 0)
			for _, exp := range exposures {
				if string(exp.RiskType) == riskType {
					filtered = append(filtered, exp)
				}
			}
			exposures = filtered
		}

		if limit, ok := p.Args["limit"].(int); ok && limit >= 0 && limit < len(exposures) {
			exposures = exposures[:limit]
		}

		return exposures, nil
	}
}
