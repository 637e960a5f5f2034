package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-infoflow/pkg/algorithms"
	"github.com/dd0wney/cluso-infoflow/pkg/engine"
	"github.com/dd0wney/cluso-infoflow/pkg/propagation"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	sectionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(34)

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#55FF55"))
)

// row is one label/value line in a report section.
type row struct {
	label string
	value string
}

func section(title string, rows ...row) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, titleStyle.Render(title))
	for _, r := range rows {
		lines = append(lines, labelStyle.Render(r.label)+r.value)
	}
	return sectionStyle.Render(strings.Join(lines, "\n"))
}

func verdict(flagged bool, yes, no string) string {
	if flagged {
		return alertStyle.Render(yes)
	}
	return okStyle.Render(no)
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, " ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// JSON views

type paramsView struct {
	Mode                   string  `json:"mode"`
	ShareProbability       float64 `json:"share_probability"`
	SharedThreshold        int     `json:"shared_threshold"`
	ViralThreshold         int     `json:"viral_threshold"`
	MisinfoSpreadThreshold float64 `json:"misinfo_spread_threshold"`
}

func newParamsView(mode string, p propagation.Params) paramsView {
	return paramsView{mode, p.ShareProbability, p.SharedThreshold, p.ViralThreshold, p.MisinfoSpreadThreshold}
}

type detectionView struct {
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	Communities int     `json:"communities"`
	Modularity  float64 `json:"modularity"`
	Passes      int     `json:"passes"`
	Moves       int     `json:"moves"`
	Converged   bool    `json:"converged"`
	Seconds     float64 `json:"seconds"`
}

type messageView struct {
	ID         int    `json:"id"`
	Source     int    `json:"source"`
	Content    string `json:"content"`
	ShareCount int    `json:"share_count"`
	State      string `json:"state"`
}

func newMessageView(m *propagation.Message) messageView {
	return messageView{m.ID, m.SourceNode, m.Content, m.ShareCount(), m.State().String()}
}

type impactView struct {
	Message          messageView `json:"message"`
	AffectedCount    int         `json:"affected_count"`
	SpreadPercentage float64     `json:"spread_percentage"`
	Misinformation   bool        `json:"misinformation"`
	SourceHasFlagged bool        `json:"source_has_flagged"`
}

func newImpactView(i *engine.Impact) *impactView {
	return &impactView{newMessageView(i.Message), i.AffectedCount, i.SpreadPercentage, i.Flagged, i.SourceHasFlagged}
}

type nodeView struct {
	Node                 int   `json:"node"`
	Community            int   `json:"community"`
	ConnectedCommunities []int `json:"connected_communities"`
	DirectNeighbors      []int `json:"direct_neighbors"`
	AllConnected         int   `json:"all_connected"`
}

func newNodeView(info *algorithms.NodeInfo) *nodeView {
	neighbors := info.DirectNeighbors
	if neighbors == nil {
		neighbors = []int{}
	}
	return &nodeView{
		Node:                 info.Node,
		Community:            info.Community,
		ConnectedCommunities: info.SortedConnectedCommunities(),
		DirectNeighbors:      neighbors,
		AllConnected:         len(info.AllConnected),
	}
}

func renderParams(v paramsView) string {
	return section("Parameters ("+v.Mode+")",
		row{"Share probability", fmt.Sprintf("%.4f", v.ShareProbability)},
		row{"Viral threshold", fmt.Sprint(v.ViralThreshold)},
		row{"Shared threshold", fmt.Sprint(v.SharedThreshold)},
		row{"Misinformation spread threshold", fmt.Sprintf("%.4f", v.MisinfoSpreadThreshold)},
	)
}

func renderDetection(v detectionView) string {
	return section("Communities",
		row{"Graph size", fmt.Sprintf("%d nodes, %d edges", v.Nodes, v.Edges)},
		row{"Communities detected", fmt.Sprint(v.Communities)},
		row{"Modularity", fmt.Sprintf("%.4f", v.Modularity)},
		row{"Passes / moves", fmt.Sprintf("%d / %d", v.Passes, v.Moves)},
		row{"Execution time", fmt.Sprintf("%.2f seconds", v.Seconds)},
	)
}

func renderMessages(msgs []messageView) string {
	rows := make([]row, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, row{
			fmt.Sprintf("#%d from node %d", m.ID, m.Source),
			fmt.Sprintf("%s, %d shares", m.State, m.ShareCount),
		})
	}
	return section("Messages", rows...)
}

func renderImpact(v *impactView) string {
	return section(fmt.Sprintf("Message from target node %d", v.Message.Source),
		row{"Content", v.Message.Content},
		row{"Affected nodes", fmt.Sprint(v.AffectedCount)},
		row{"Spread percentage", fmt.Sprintf("%.2f%%", v.SpreadPercentage*100)},
		row{"Misinformation", verdict(v.Misinformation,
			"flagged as potential misinformation", "not flagged as misinformation")},
		row{"Target node", verdict(v.SourceHasFlagged,
			"has flagged misinformation messages", "does not have flagged misinformation messages")},
	)
}

func renderNode(v *nodeView) string {
	return section(fmt.Sprintf("Target node %d", v.Node),
		row{"Community", fmt.Sprint(v.Community)},
		row{"Connected communities", fmt.Sprint(len(v.ConnectedCommunities))},
		row{"Directly connected nodes", fmt.Sprint(len(v.DirectNeighbors))},
		row{"All connected nodes", fmt.Sprint(v.AllConnected)},
		row{"Direct neighbors", joinInts(v.DirectNeighbors)},
	)
}

type communityView struct {
	ID    int   `json:"id"`
	Size  int   `json:"size"`
	Nodes []int `json:"nodes,omitempty"`
}

func renderCommunities(comms []communityView, limit int) string {
	sorted := append([]communityView(nil), comms...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Size > sorted[j].Size })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	rows := make([]row, 0, len(sorted))
	for _, c := range sorted {
		rows = append(rows, row{fmt.Sprintf("Community %d", c.ID), fmt.Sprintf("%d nodes", c.Size)})
	}
	return section("Largest communities", rows...)
}
