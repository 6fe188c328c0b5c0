// Package output renders planning results for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rollwise/cutplan/pkg/application/dto"
	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// Config holds configuration for output rendering
type Config struct {
	Format  string
	Verbose bool
}

// Render writes the planning result to w in the configured format
func Render(result *dto.PlanningResult, config Config, w io.Writer) error {
	switch config.Format {
	case "text":
		return renderText(result, config, w)
	case "json":
		return renderJSON(result, w)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func renderText(result *dto.PlanningResult, config Config, w io.Writer) error {
	fmt.Fprintf(w, "Cutting Plan Summary\n")
	fmt.Fprintf(w, "====================\n\n")
	fmt.Fprintf(w, "%s\n", result.GetSummary())
	fmt.Fprintf(w, "Elapsed: %v\n\n", result.Elapsed)

	for _, g := range result.Groups {
		fmt.Fprintf(w, "Group %s\n", g.Spec)
		if g.Err != nil {
			fmt.Fprintf(w, "  FAILED: %v\n\n", g.Err)
			continue
		}
		if g.TimedOut {
			fmt.Fprintf(w, "  (solver time limit reached, best plan so far)\n")
		}
		fmt.Fprintf(w, "  %-40s %-8s %-10s\n", "Pattern", "Repeat", "Trim/Roll")
		fmt.Fprintf(w, "  %-40s %-8s %-10s\n",
			"----------------------------------------", "--------", "----------")
		for _, inst := range g.Instances {
			fmt.Fprintf(w, "  %-40s %-8d %-10s\n",
				inst.Pattern.Key(), inst.Repeat, inst.Pattern.Trim)
		}
		residual := 0
		for _, qty := range g.Residual {
			residual += qty
		}
		fmt.Fprintf(w, "  Residual rolls: %d\n\n", residual)
	}

	if len(result.RemnantAllocations) > 0 {
		fmt.Fprintf(w, "Remnant Allocations:\n")
		for _, a := range result.RemnantAllocations {
			fmt.Fprintf(w, "  %s -> order %s (%s\")\n", a.FrontendID, a.OrderID, a.Width)
		}
		fmt.Fprintln(w)
	}

	if len(result.PendingDeltas) > 0 {
		fmt.Fprintf(w, "Deferred to Backlog:\n")
		fmt.Fprintf(w, "  %-12s %-10s %-6s %-24s\n", "ID", "Width", "Qty", "Reason")
		for _, p := range result.PendingDeltas {
			fmt.Fprintf(w, "  %-12s %-10s %-6d %-24s\n",
				p.FrontendID, p.Width, p.Quantity, p.Reason)
		}
		fmt.Fprintln(w)
	}

	if len(result.Rejected) > 0 {
		fmt.Fprintf(w, "Rejected Lines:\n")
		for _, r := range result.Rejected {
			fmt.Fprintf(w, "  %s %s x%d: %v\n",
				r.Item.Origin.Ref, r.Item.Width, r.Item.Quantity, r.Err)
		}
		fmt.Fprintln(w)
	}

	if config.Verbose {
		renderHierarchy(result.Hierarchy, w)
	}
	return nil
}

func renderHierarchy(nodes []entities.RollNode, w io.Writer) {
	byParent := make(map[string][]entities.RollNode)
	var jumbos []entities.RollNode
	for _, node := range nodes {
		if node.Kind == entities.JumboRoll {
			jumbos = append(jumbos, node)
			continue
		}
		byParent[node.ParentID.String()] = append(byParent[node.ParentID.String()], node)
	}

	fmt.Fprintf(w, "Roll Hierarchy:\n")
	for i, jumbo := range jumbos {
		fmt.Fprintf(w, "  Jumbo %d (%s)\n", i+1, jumbo.Spec)
		for _, set := range byParent[jumbo.ID.String()] {
			fmt.Fprintf(w, "    Set %d: trim %s\n", set.Sequence, set.Trim)
			for _, cut := range byParent[set.ID.String()] {
				fmt.Fprintf(w, "      Cut %s\n", cut.Width)
			}
		}
	}
	fmt.Fprintln(w)
}

// jsonResult is the wire shape of a planning result. Widths render as
// two-decimal strings.
type jsonResult struct {
	Strategy  string        `json:"strategy"`
	ElapsedMS int64         `json:"elapsed_ms"`
	Groups    []jsonGroup   `json:"groups"`
	Pending   []jsonPending `json:"pending_deltas"`
	Rejected  []jsonReject  `json:"rejected"`
	Waste     jsonWaste     `json:"waste"`
}

type jsonGroup struct {
	Spec      string        `json:"spec"`
	Patterns  []jsonPattern `json:"patterns"`
	Residual  int           `json:"residual_rolls"`
	TimedOut  bool          `json:"timed_out,omitempty"`
	Error     string        `json:"error,omitempty"`
	SetRolls  int           `json:"set_rolls"`
	JumboRows int           `json:"jumbos"`
}

type jsonPattern struct {
	Pieces []string `json:"pieces"`
	Repeat int      `json:"repeat"`
	Trim   string   `json:"trim"`
}

type jsonPending struct {
	ID       string `json:"id"`
	Width    string `json:"width"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

type jsonReject struct {
	Origin   string `json:"origin"`
	Width    string `json:"width"`
	Quantity int    `json:"quantity"`
	Error    string `json:"error"`
}

type jsonWaste struct {
	TotalTrim     string `json:"total_trim"`
	AverageTrim   string `json:"average_trim"`
	WastePercent  string `json:"waste_percent"`
	HighTrimRolls int    `json:"high_trim_rolls"`
	Pieces        int    `json:"pieces_produced"`
	SetRolls      int    `json:"set_rolls"`
	Jumbos        int    `json:"jumbos"`
}

func renderJSON(result *dto.PlanningResult, w io.Writer) error {
	view := jsonResult{
		Strategy:  result.Strategy,
		ElapsedMS: result.Elapsed.Milliseconds(),
		Groups:    make([]jsonGroup, 0, len(result.Groups)),
		Waste: jsonWaste{
			TotalTrim:     result.Waste.TotalTrim.StringFixed(2),
			AverageTrim:   result.Waste.AverageTrim.StringFixed(2),
			WastePercent:  result.Waste.WastePercent.StringFixed(2),
			HighTrimRolls: result.Waste.HighTrimInstances,
			Pieces:        result.Waste.PiecesProduced,
			SetRolls:      result.Waste.SetRollCount,
			Jumbos:        result.Waste.JumboCount,
		},
	}

	for _, g := range result.Groups {
		group := jsonGroup{Spec: g.SpecKey, TimedOut: g.TimedOut}
		if g.Err != nil {
			group.Error = g.Err.Error()
		}
		for _, inst := range g.Instances {
			pieces := make([]string, len(inst.Pattern.Pieces))
			for i, p := range inst.Pattern.Pieces {
				pieces[i] = p.String()
			}
			group.Patterns = append(group.Patterns, jsonPattern{
				Pieces: pieces,
				Repeat: inst.Repeat,
				Trim:   inst.Pattern.Trim.String(),
			})
			group.SetRolls += inst.Repeat
		}
		for _, qty := range g.Residual {
			group.Residual += qty
		}
		for _, node := range g.Hierarchy {
			if node.Kind == entities.JumboRoll {
				group.JumboRows++
			}
		}
		view.Groups = append(view.Groups, group)
	}

	for _, p := range result.PendingDeltas {
		view.Pending = append(view.Pending, jsonPending{
			ID:       p.FrontendID,
			Width:    p.Width.String(),
			Quantity: p.Quantity,
			Reason:   p.Reason.String(),
		})
	}
	for _, r := range result.Rejected {
		view.Rejected = append(view.Rejected, jsonReject{
			Origin:   r.Item.Origin.Ref,
			Width:    r.Item.Width.String(),
			Quantity: r.Item.Quantity,
			Error:    r.Err.Error(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
