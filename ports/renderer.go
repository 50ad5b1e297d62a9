package ports

import (
	"gokinet/domain/kinetics"
)

// FigureRenderer draws the static model plots for an analysis
type FigureRenderer interface {
	Figure(analysis *kinetics.Analysis) ([]byte, error)
}
