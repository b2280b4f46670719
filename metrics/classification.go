// Package metrics は分類モデルの評価指標を提供します。
package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
)

func checkPair(op string, nTrue, nPred int) error {
	if nTrue == 0 {
		return errors.NewValueError(op, "empty input")
	}
	if nPred != nTrue {
		return errors.NewDimensionError(op, nTrue, nPred, 0)
	}
	return nil
}

// Accuracy は正解率を計算する
func Accuracy[T comparable](yTrue, yPred []T) (float64, error) {
	if err := checkPair("Accuracy", len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// ConfusionMatrix returns a len(classes)×len(classes) matrix whose (i, j)
// entry counts samples of class i predicted as class j.
func ConfusionMatrix[T comparable](yTrue, yPred, classes []T) (*mat.Dense, error) {
	if err := checkPair("ConfusionMatrix", len(yTrue), len(yPred)); err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "no classes")
	}
	index := make(map[T]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	cm := mat.NewDense(len(classes), len(classes), nil)
	for i := range yTrue {
		r, ok := index[yTrue[i]]
		if !ok {
			return nil, errors.NewValueError("ConfusionMatrix", fmt.Sprintf("unknown true class %v", yTrue[i]))
		}
		c, ok := index[yPred[i]]
		if !ok {
			return nil, errors.NewValueError("ConfusionMatrix", fmt.Sprintf("unknown predicted class %v", yPred[i]))
		}
		cm.Set(r, c, cm.At(r, c)+1)
	}
	return cm, nil
}

// ClassReport holds per-class precision, recall and F1.
type ClassReport struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report は混同行列からクラスごとの指標を計算する。
// 分母が0の指標は0とする
func Report[T comparable](yTrue, yPred, classes []T) (map[T]ClassReport, error) {
	cm, err := ConfusionMatrix(yTrue, yPred, classes)
	if err != nil {
		return nil, err
	}
	k := len(classes)
	out := make(map[T]ClassReport, k)
	for i, c := range classes {
		tp := cm.At(i, i)
		var predicted, actual float64
		for j := 0; j < k; j++ {
			predicted += cm.At(j, i)
			actual += cm.At(i, j)
		}
		var rep ClassReport
		rep.Support = int(actual)
		if predicted > 0 {
			rep.Precision = tp / predicted
		}
		if actual > 0 {
			rep.Recall = tp / actual
		}
		if rep.Precision+rep.Recall > 0 {
			rep.F1 = 2 * rep.Precision * rep.Recall / (rep.Precision + rep.Recall)
		}
		out[c] = rep
	}
	return out, nil
}
