package regression

import "fmt"

// leaf marks an absent child in an exported tree.
const leaf = -1

// Node is one entry of an exported decision tree. Internal nodes send a row
// left when row[Feature] <= Threshold.
type Node struct {
	Feature   int     `json:"feature" yaml:"feature"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Left      int     `json:"left" yaml:"left"`
	Right     int     `json:"right" yaml:"right"`
	Value     float64 `json:"value" yaml:"value"`
}

// Tree is a flat, pre-ordered node list rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

func (n Node) isLeaf() bool {
	return n.Left == leaf && n.Right == leaf
}

// validate requires every child index to point forward, which rules out
// cycles and bounds traversal by len(Nodes).
func (t Tree) validate(width int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("%w: tree has no nodes", ErrMalformedTree)
	}
	for i, n := range t.Nodes {
		if n.isLeaf() {
			continue
		}
		if n.Left == leaf || n.Right == leaf {
			return fmt.Errorf("%w: node %d has a single child", ErrMalformedTree, i)
		}
		if n.Feature < 0 || n.Feature >= width {
			return fmt.Errorf("%w: node %d splits on feature %d of %d", ErrMalformedTree, i, n.Feature, width)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("%w: node %d has child %d out of range", ErrMalformedTree, i, child)
			}
		}
	}
	return nil
}

func (t Tree) eval(row []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.isLeaf() {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type ensemble struct {
	features []string
	trees    []Tree
}

func newEnsemble(features []string, trees []Tree) (ensemble, error) {
	if len(trees) == 0 {
		return ensemble{}, fmt.Errorf("%w: ensemble has no trees", ErrMalformedTree)
	}
	for i, t := range trees {
		if err := t.validate(len(features)); err != nil {
			return ensemble{}, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return ensemble{
		features: append([]string(nil), features...),
		trees:    trees,
	}, nil
}

func (e ensemble) FeatureNames() []string {
	return append([]string(nil), e.features...)
}

func (e ensemble) sum(row []float64) float64 {
	var total float64
	for _, t := range e.trees {
		total += t.eval(row)
	}
	return total
}

// forestModel averages its trees.
type forestModel struct {
	ensemble
}

func newForestModel(features []string, trees []Tree) (*forestModel, error) {
	e, err := newEnsemble(features, trees)
	if err != nil {
		return nil, err
	}
	return &forestModel{ensemble: e}, nil
}

func (m *forestModel) Predict(row []float64) (float64, error) {
	if err := checkRow(row, len(m.features)); err != nil {
		return 0, err
	}
	return checkOutput(m.sum(row) / float64(len(m.trees)))
}

// boostedModel adds scaled tree outputs to a base score.
type boostedModel struct {
	ensemble
	baseScore    float64
	learningRate float64
}

func newBoostedModel(features []string, trees []Tree, baseScore, learningRate float64) (*boostedModel, error) {
	if learningRate <= 0 {
		return nil, fmt.Errorf("%w: learning rate must be positive, got %v", ErrMalformedTree, learningRate)
	}
	e, err := newEnsemble(features, trees)
	if err != nil {
		return nil, err
	}
	return &boostedModel{ensemble: e, baseScore: baseScore, learningRate: learningRate}, nil
}

func (m *boostedModel) Predict(row []float64) (float64, error) {
	if err := checkRow(row, len(m.features)); err != nil {
		return 0, err
	}
	return checkOutput(m.baseScore + m.learningRate*m.sum(row))
}
