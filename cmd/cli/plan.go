package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifeboard/shopping-service/internal/catalog"
	"github.com/lifeboard/shopping-service/internal/location"
	"github.com/lifeboard/shopping-service/internal/optimizer"
)

var (
	catalogPath     string
	maxBudget       int64
	maxTravelMin    float64
	preferredStores []string
	planTimeout     time.Duration
)

func init() {
	for _, cmd := range []*cobra.Command{optimizeCmd, cheapestCmd, routeCmd} {
		cmd.Flags().StringVarP(&catalogPath, "catalog", "f", "", "catalog file (.json or .xlsx)")
		cmd.MarkFlagRequired("catalog")
		cmd.Flags().DurationVar(&planTimeout, "timeout", 30*time.Second, "planning timeout")
		rootCmd.AddCommand(cmd)
	}

	optimizeCmd.Flags().Int64Var(&maxBudget, "budget", 0, "maximum total cost in pence (0 = unlimited)")
	optimizeCmd.Flags().Float64Var(&maxTravelMin, "max-travel", 0, "maximum combined travel time in minutes (0 = unlimited)")
	optimizeCmd.Flags().StringSliceVar(&preferredStores, "prefer", nil, "store IDs to favour")
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Rank stores for a shopping list under budget and travel constraints",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(func(ctx context.Context, o *optimizer.ShoppingOptimizer, req *optimizer.PlanRequest) (any, error) {
			req.Constraints.MaxBudget = maxBudget
			req.Constraints.MaxTravelTimeMin = maxTravelMin
			req.Constraints.PreferredStores = preferredStores
			return o.OptimizeShoppingList(ctx, req)
		})
	},
}

var cheapestCmd = &cobra.Command{
	Use:   "cheapest",
	Short: "Find the cheapest combination of up to three stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(func(ctx context.Context, o *optimizer.ShoppingOptimizer, req *optimizer.PlanRequest) (any, error) {
			return o.FindCheapestCombination(ctx, req)
		})
	},
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Order store visits into a fastest route",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(func(ctx context.Context, o *optimizer.ShoppingOptimizer, req *optimizer.PlanRequest) (any, error) {
			return o.FindFastestRoute(ctx, req)
		})
	},
}

func runPlan(run func(context.Context, *optimizer.ShoppingOptimizer, *optimizer.PlanRequest) (any, error)) error {
	cat, err := catalog.LoadFile(catalogPath)
	if err != nil {
		return err
	}

	optimizerConfig := optimizer.Defaults()
	var locations optimizer.LocationService
	if cfg != nil {
		optimizerConfig = &cfg.Optimizer
		if cfg.Location.BaseURL != "" {
			locations = location.NewClient(cfg.Location, *logger)
		}
	}

	o := optimizer.NewShoppingOptimizer(locations, nil, optimizerConfig, nil, *logger)

	req := &optimizer.PlanRequest{
		Items:       cat.Items,
		Stores:      cat.Stores,
		Inventories: cat.Inventories,
		Origin:      cat.Origin,
		Constraints: optimizer.Constraints{Weights: optimizer.DefaultWeights()},
	}

	ctx, cancel := context.WithTimeout(context.Background(), planTimeout)
	defer cancel()

	result, err := run(ctx, o, req)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
