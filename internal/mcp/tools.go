package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/represent"
	"github.com/ashita-ai/compendium/internal/service/catalog"
)

// view renders one resource: its list and its detail shape.
type view struct {
	list func(ctx context.Context) (any, int, error)
	get  func(ctx context.Context, id int64) (any, error)
}

func listView[E, S any](l represent.Linker, list func(context.Context) ([]E, error), shape func(represent.Linker, E) S) func(context.Context) (any, int, error) {
	return func(ctx context.Context) (any, int, error) {
		items, err := list(ctx)
		if err != nil {
			return nil, 0, err
		}
		return represent.Summaries(l, items, shape), len(items), nil
	}
}

func detailView[R, D any](l represent.Linker, get func(context.Context, int64) (R, error), shape func(represent.Linker, R) D) func(context.Context, int64) (any, error) {
	return func(ctx context.Context, id int64) (any, error) {
		rec, err := get(ctx, id)
		if err != nil {
			return nil, err
		}
		return shape(l, rec), nil
	}
}

func (s *Server) catalogViews() map[string]view {
	svc, l := s.catalog, s.linker
	return map[string]view{
		model.ResourceClasses: {
			list: listView(l, svc.ListClasses, represent.ClassSummary),
			get:  detailView(l, svc.GetClass, represent.ClassDetail),
		},
		model.ResourceProficiencies: {
			list: listView(l, svc.ListProficiencies, represent.ProficiencySummary),
			get:  detailView(l, svc.GetProficiency, represent.ProficiencyDetail),
		},
		model.ResourceRaces: {
			list: listView(l, svc.ListRaces, represent.RaceSummary),
			get:  detailView(l, svc.GetRace, represent.RaceDetail),
		},
		model.ResourceSubraces: {
			list: listView(l, svc.ListSubraces, represent.SubraceSummary),
			get:  detailView(l, svc.GetSubrace, represent.SubraceDetail),
		},
		model.ResourceSchools: {
			list: listView(l, svc.ListSchools, represent.SchoolSummary),
			get:  detailView(l, svc.GetSchool, represent.SchoolDetail),
		},
		model.ResourceSpells: {
			list: listView(l, svc.ListSpells, represent.SpellSummary),
			get:  detailView(l, svc.GetSpell, represent.SpellDetail),
		},
		model.ResourceSubclasses: {
			list: listView(l, svc.ListSubclasses, represent.SubclassSummary),
			get:  detailView(l, svc.GetSubclass, represent.SubclassDetail),
		},
	}
}

var resourceDescription = "Catalog resource: one of " + strings.Join(model.Resources, ", ")

func (s *Server) registerTools() {
	// compendium_list: every entity of one resource, in creation order.
	s.mcpServer.AddTool(
		mcplib.NewTool("compendium_list",
			mcplib.WithDescription(`List the entities of one catalog resource.

Returns the summary shape used by the HTTP list endpoints: id, index, name
and detail_url (proficiencies also carry their type). Use compendium_get to
fetch the full entity with its associations.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("resource",
				mcplib.Description(resourceDescription),
				mcplib.Enum(model.Resources...),
				mcplib.Required(),
			),
		),
		s.handleList,
	)

	// compendium_get: one entity by id or natural key.
	s.mcpServer.AddTool(
		mcplib.NewTool("compendium_get",
			mcplib.WithDescription(`Fetch one catalog entity with its associations.

Address the entity by numeric id or by its index (the natural key, such as
"wizard" or "fireball"). When both are given, id wins.

EXAMPLE: resource="classes", index="wizard" returns the wizard class with
its proficiencies, subclasses and spells.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("resource",
				mcplib.Description(resourceDescription),
				mcplib.Enum(model.Resources...),
				mcplib.Required(),
			),
			mcplib.WithNumber("id",
				mcplib.Description("Entity id"),
				mcplib.Min(1),
			),
			mcplib.WithString("index",
				mcplib.Description("Entity natural key"),
			),
		),
		s.handleGet,
	)

	// compendium_counts: row count per resource.
	s.mcpServer.AddTool(
		mcplib.NewTool("compendium_counts",
			mcplib.WithDescription("Count the entities of every catalog resource."),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
		),
		s.handleCounts,
	)
}

// resourceArg reads and checks the resource argument.
func (s *Server) resourceArg(request mcplib.CallToolRequest) (string, view, error) {
	resource := request.GetString("resource", "")
	if resource == "" {
		return "", view{}, fmt.Errorf("resource is required (%s)", resourceDescription)
	}
	v, ok := s.views[resource]
	if !ok {
		return "", view{}, fmt.Errorf("unknown resource %q (%s)", resource, resourceDescription)
	}
	return resource, v, nil
}

func (s *Server) handleList(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	resource, v, err := s.resourceArg(request)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	items, total, err := v.list(ctx)
	if err != nil {
		s.logger.Error("mcp: list failed", "resource", resource, "error", err)
		return errorResult(fmt.Sprintf("failed to list %s", resource)), nil
	}
	return jsonResult(map[string]any{
		"resource": resource,
		"results":  items,
		"total":    total,
	})
}

func (s *Server) handleGet(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	resource, v, err := s.resourceArg(request)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	id := int64(request.GetInt("id", 0))
	index := request.GetString("index", "")
	if id <= 0 {
		if index == "" {
			return errorResult("id or index is required"), nil
		}
		id, err = s.catalog.IDByIndex(ctx, resource, index)
		if catalog.IsNotFound(err) {
			return errorResult(fmt.Sprintf("no %s with index %q", resource, index)), nil
		}
		if err != nil {
			s.logger.Error("mcp: resolve index failed", "resource", resource, "index", index, "error", err)
			return errorResult("failed to resolve index"), nil
		}
	}

	entity, err := v.get(ctx, id)
	if catalog.IsNotFound(err) {
		return errorResult(fmt.Sprintf("no %s with id %d", resource, id)), nil
	}
	if err != nil {
		s.logger.Error("mcp: get failed", "resource", resource, "id", id, "error", err)
		return errorResult(fmt.Sprintf("failed to get %s %d", resource, id)), nil
	}
	return jsonResult(entity)
}

func (s *Server) handleCounts(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	counts, err := s.catalog.Counts(ctx)
	if err != nil {
		s.logger.Error("mcp: counts failed", "error", err)
		return errorResult("failed to count resources"), nil
	}
	return jsonResult(counts)
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(data)},
		},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
