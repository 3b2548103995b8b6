// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

// Package drkg downloads and parses the Drug Repurposing Knowledge Graph
// (DRKG): ~5.8 million (head, relation, tail) triples over ~97 thousand
// typed entities such as genes, compounds and diseases.
//
// Entities are named "Type::name" (e.g. "Compound::DB00394"); relations are
// grouped per (source type, relation name, target type), each group forming
// one homogeneous edge list with dense per-type entity ids assigned in order
// of first appearance.
package drkg

import (
	"bufio"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"k8s.io/klog/v2"

	"github.com/dglai/dgl-winter-school/graphs"
)

// Relation identifies one group of edges: all triples whose head is of
// SourceType, tail of TargetType, and relation name is Name.
type Relation struct {
	SourceType, Name, TargetType string
}

// String formats the relation the way the raw dataset spells relation names.
func (r Relation) String() string {
	return r.SourceType + "::" + r.Name + "::" + r.TargetType
}

// dictionary assigns dense ids to entity names of one type, in order of
// first appearance.
type dictionary struct {
	ids   map[string]int32
	names []string
}

func newDictionary() *dictionary {
	return &dictionary{ids: make(map[string]int32)}
}

func (d *dictionary) idOf(name string) int32 {
	if id, found := d.ids[name]; found {
		return id
	}
	id := int32(len(d.names))
	d.ids[name] = id
	d.names = append(d.names, name)
	return id
}

// KnowledgeGraph holds the parsed dataset: per-type entity dictionaries and
// per-relation edge lists.
type KnowledgeGraph struct {
	entities map[string]*dictionary
	edges    map[Relation][][2]int32
}

// ParseTriples reads tab-separated (head, relation, tail) triples and groups
// them into per-relation edge lists. A header row is not expected; malformed
// rows fail the parse.
func ParseTriples(r io.Reader) (*KnowledgeGraph, error) {
	kg := &KnowledgeGraph{
		entities: make(map[string]*dictionary),
		edges:    make(map[Relation][][2]int32),
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 3 {
			return nil, errors.Errorf("line %d: want 3 tab-separated fields, got %d", lineNum, len(parts))
		}
		sourceType, sourceName, err := splitEntity(parts[0])
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d (head)", lineNum)
		}
		targetType, targetName, err := splitEntity(parts[2])
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d (tail)", lineNum)
		}
		rel := Relation{SourceType: sourceType, Name: parts[1], TargetType: targetType}
		source := kg.dictionaryFor(sourceType).idOf(sourceName)
		target := kg.dictionaryFor(targetType).idOf(targetName)
		kg.edges[rel] = append(kg.edges[rel], [2]int32{source, target})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "while reading triples")
	}
	klog.V(1).Infof("drkg: parsed %d relations over %d entity types", len(kg.edges), len(kg.entities))
	return kg, nil
}

// splitEntity splits "Type::name" into its type and name.
func splitEntity(s string) (entityType, name string, err error) {
	parts := strings.SplitN(s, "::", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("entity %q is not in the Type::name format", s)
	}
	return parts[0], parts[1], nil
}

func (kg *KnowledgeGraph) dictionaryFor(entityType string) *dictionary {
	d, found := kg.entities[entityType]
	if !found {
		d = newDictionary()
		kg.entities[entityType] = d
	}
	return d
}

// EntityTypes returns the entity type names, sorted.
func (kg *KnowledgeGraph) EntityTypes() []string {
	types := maps.Keys(kg.entities)
	slices.Sort(types)
	return types
}

// NumEntities returns how many distinct entities of the given type appeared.
func (kg *KnowledgeGraph) NumEntities(entityType string) int {
	d, found := kg.entities[entityType]
	if !found {
		return 0
	}
	return len(d.names)
}

// EntityID returns the dense id of the named entity, or false if it never
// appeared.
func (kg *KnowledgeGraph) EntityID(entityType, name string) (int32, bool) {
	d, found := kg.entities[entityType]
	if !found {
		return 0, false
	}
	id, found := d.ids[name]
	return id, found
}

// EntityName is the inverse of EntityID.
func (kg *KnowledgeGraph) EntityName(entityType string, id int32) (string, bool) {
	d, found := kg.entities[entityType]
	if !found || id < 0 || int(id) >= len(d.names) {
		return "", false
	}
	return d.names[id], true
}

// RelationKeys returns every relation seen, sorted by their string form so
// iteration order is stable run to run.
func (kg *KnowledgeGraph) RelationKeys() []Relation {
	keys := maps.Keys(kg.edges)
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// NumEdges returns the number of triples grouped under rel.
func (kg *KnowledgeGraph) NumEdges(rel Relation) int {
	return len(kg.edges[rel])
}

// Edges returns the edge list of rel as (source id, target id) pairs, in the
// order the triples appeared. The slice is shared, don't modify it.
func (kg *KnowledgeGraph) Edges(rel Relation) [][2]int32 {
	return kg.edges[rel]
}

// GraphFor builds the homogeneous graph of one relation.
//
// If source and target types are the same, node ids are that type's entity
// ids. Otherwise the graph is laid out bipartite: sources keep their ids and
// targets are offset by the number of source-type entities.
func (kg *KnowledgeGraph) GraphFor(rel Relation) (*graphs.Graph, error) {
	edges, found := kg.edges[rel]
	if !found {
		return nil, errors.Errorf("unknown relation %s", rel)
	}
	numSources := kg.NumEntities(rel.SourceType)
	if rel.SourceType == rel.TargetType {
		g := graphs.New(numSources)
		g.AddEdges(edges)
		return g, nil
	}
	numTargets := kg.NumEntities(rel.TargetType)
	g := graphs.New(numSources + numTargets)
	for _, edge := range edges {
		g.AddEdge(edge[0], int32(numSources)+edge[1])
	}
	return g, nil
}
