package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

const uriScheme = "compendium://"

func (s *Server) registerResources() {
	// compendium://counts: entity count per resource.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			uriScheme+"counts",
			"Catalog Counts",
			mcplib.WithResourceDescription("Number of entities in every catalog resource"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleCountsResource,
	)

	// compendium://{resource}/{id}: one entity in its detail shape.
	s.mcpServer.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			uriScheme+"{resource}/{id}",
			"Catalog Entity",
			mcplib.WithTemplateDescription("A class, proficiency, race, subrace, school, spell or subclass by id"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		s.handleEntityResource,
	)
}

func (s *Server) handleCountsResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	counts, err := s.catalog.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("mcp: counts: %w", err)
	}
	return jsonContents(request.Params.URI, counts)
}

func (s *Server) handleEntityResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	uri := request.Params.URI
	resource, id, err := parseEntityURI(uri)
	if err != nil {
		return nil, err
	}
	v, ok := s.views[resource]
	if !ok {
		return nil, fmt.Errorf("mcp: unknown resource %q", resource)
	}
	entity, err := v.get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mcp: read %s: %w", uri, err)
	}
	return jsonContents(uri, entity)
}

// parseEntityURI splits compendium://{resource}/{id}.
func parseEntityURI(uri string) (string, int64, error) {
	rest, ok := strings.CutPrefix(uri, uriScheme)
	if !ok {
		return "", 0, fmt.Errorf("mcp: invalid entity URI: %s", uri)
	}
	resource, rawID, ok := strings.Cut(rest, "/")
	if !ok || resource == "" {
		return "", 0, fmt.Errorf("mcp: invalid entity URI: %s", uri)
	}
	id, err := strconv.ParseInt(strings.TrimSuffix(rawID, "/"), 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("mcp: invalid entity id in URI: %s", uri)
	}
	return resource, id, nil
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
