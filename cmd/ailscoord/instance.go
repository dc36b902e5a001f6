package main

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/ailscvrp/core/pkg/cvrp"
)

// loadOrGenerateInstance reads a CVRP instance from path if given, or
// generates a synthetic one with numCustomers customers uniformly
// scattered in a 1000x1000 square. Instance parsing is outside this
// project's scope (the core packages treat Instance as an externally
// constructed value); this is the CLI's own minimal loader, not a
// general-purpose format implementation.
func loadOrGenerateInstance(path string, numCustomers int, capacity float64, seed int64) (*cvrp.Instance, error) {
	if path != "" {
		return loadInstanceFile(path)
	}
	return generateInstance(numCustomers, capacity, seed), nil
}

// generateInstance builds a random Euclidean CVRP instance: the depot at
// the center, customers scattered uniformly, each with an integer demand
// drawn uniformly from 1..9.
func generateInstance(numCustomers int, capacity float64, seed int64) *cvrp.Instance {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec

	type point struct{ x, y float64 }
	coords := make([]point, numCustomers+1)
	coords[0] = point{500, 500}
	for c := 1; c <= numCustomers; c++ {
		coords[c] = point{rng.Float64() * 1000, rng.Float64() * 1000}
	}

	demand := make([]float64, numCustomers+1)
	for c := 1; c <= numCustomers; c++ {
		demand[c] = 1 + float64(rng.Intn(9))
	}

	dist := make([][]float64, numCustomers+1)
	for i := range dist {
		dist[i] = make([]float64, numCustomers+1)
		for j := range dist[i] {
			dx := coords[i].x - coords[j].x
			dy := coords[i].y - coords[j].y
			dist[i][j] = math.Sqrt(dx*dx + dy*dy)
		}
	}

	return &cvrp.Instance{
		Name:       fmt.Sprintf("synthetic-%d", numCustomers),
		Capacity:   capacity,
		Demand:     demand,
		Distance:   dist,
		NumVehicle: (numCustomers + int(capacity) - 1) / int(capacity),
	}
}

// loadInstanceFile parses a small line-oriented format:
//
//	name <string>
//	capacity <float>
//	node <id> <x> <y> <demand>   (id 0 is the depot, demand 0)
//
// This is a CLI convenience, not a stand-in for a real CVRPLIB parser.
func loadInstanceFile(path string) (*cvrp.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open instance file: %w", err)
	}
	defer f.Close()

	var name string
	var capacity float64
	type node struct {
		id           int
		x, y, demand float64
	}
	var nodes []node

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "name":
			name = strings.Join(fields[1:], " ")
		case "capacity":
			capacity, err = strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("parse capacity: %w", err)
			}
		case "node":
			if len(fields) != 5 {
				return nil, fmt.Errorf("malformed node line: %q", line)
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("parse node id: %w", err)
			}
			x, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("parse node x: %w", err)
			}
			y, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("parse node y: %w", err)
			}
			d, err := strconv.ParseFloat(fields[4], 64)
			if err != nil {
				return nil, fmt.Errorf("parse node demand: %w", err)
			}
			nodes = append(nodes, node{id: id, x: x, y: y, demand: d})
		default:
			return nil, fmt.Errorf("unrecognized directive: %q", fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read instance file: %w", err)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("instance file missing a positive capacity")
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("instance file has no node lines")
	}

	n := len(nodes) - 1
	demand := make([]float64, n+1)
	coords := make([][2]float64, n+1)
	for _, nd := range nodes {
		if nd.id < 0 || nd.id > n {
			return nil, fmt.Errorf("node id %d out of range [0,%d]", nd.id, n)
		}
		demand[nd.id] = nd.demand
		coords[nd.id] = [2]float64{nd.x, nd.y}
	}

	dist := make([][]float64, n+1)
	for i := range dist {
		dist[i] = make([]float64, n+1)
		for j := range dist[i] {
			dx := coords[i][0] - coords[j][0]
			dy := coords[i][1] - coords[j][1]
			dist[i][j] = math.Sqrt(dx*dx + dy*dy)
		}
	}

	return &cvrp.Instance{
		Name:       name,
		Capacity:   capacity,
		Demand:     demand,
		Distance:   dist,
		NumVehicle: (n + int(capacity) - 1) / int(capacity),
	}, nil
}
