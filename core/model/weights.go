package model

import (
	"encoding/json"
	"fmt"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
)

// ModelWeights はモデルの重みを表す構造体（シリアライゼーション用）
//
// It is the envelope of the linear artifact: a multinomial classifier with one
// coefficient row per class, plus everything the inference side needs to
// rebuild the exact feature layout it was trained on.
type ModelWeights struct {
	// ModelType はモデルの種類（LogisticRegression等）
	ModelType string `json:"model_type"`

	// Version はモデルのバージョン（互換性チェック用）
	Version string `json:"version"`

	// Features は特徴量の名前。推論側のエンコーダと一致しなければならない
	Features []string `json:"features"`

	// Classes はクラスラベル。CoefMatrix の行と同じ順序
	Classes []string `json:"classes"`

	// CoefMatrix は重み係数 [class][feature]
	CoefMatrix [][]float64 `json:"coef_matrix"`

	// Intercepts はクラスごとの切片
	Intercepts []float64 `json:"intercepts"`

	// Scaler は学習時の標準化パラメータ（オプション）
	Scaler *ScalerParams `json:"scaler,omitempty"`

	// Encoding はカテゴリ変数ごとのカテゴリ一覧。先頭がベースライン
	Encoding map[string][]string `json:"encoding,omitempty"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters,omitempty"`

	// Metadata は追加のメタデータ（学習時の統計等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ScalerParams holds the per-feature statistics of a fitted StandardScaler.
type ScalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	return json.Unmarshal(data, mw)
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.NewValueError("ModelWeights.Validate", "model_type is required")
	}
	if mw.Version == "" {
		return errors.NewValueError("ModelWeights.Validate", "version is required")
	}
	if !mw.IsFitted {
		if len(mw.CoefMatrix) > 0 {
			return errors.NewValueError("ModelWeights.Validate", "unfitted model should not have coefficients")
		}
		return nil
	}

	nClasses := len(mw.Classes)
	if nClasses < 2 {
		return errors.NewValueError("ModelWeights.Validate", fmt.Sprintf("need at least 2 classes, got %d", nClasses))
	}
	if len(mw.CoefMatrix) != nClasses {
		return errors.NewDimensionError("ModelWeights.Validate", nClasses, len(mw.CoefMatrix), 0)
	}
	if len(mw.Intercepts) != nClasses {
		return errors.NewDimensionError("ModelWeights.Validate", nClasses, len(mw.Intercepts), 0)
	}
	nFeatures := len(mw.Features)
	if nFeatures == 0 {
		return errors.NewValueError("ModelWeights.Validate", "fitted model must name its features")
	}
	for _, row := range mw.CoefMatrix {
		if len(row) != nFeatures {
			return errors.NewDimensionError("ModelWeights.Validate", nFeatures, len(row), 1)
		}
		if err := errors.CheckNumericalStability("ModelWeights.Validate", row); err != nil {
			return err
		}
	}
	if err := errors.CheckNumericalStability("ModelWeights.Validate", mw.Intercepts); err != nil {
		return err
	}
	if mw.Scaler != nil {
		if len(mw.Scaler.Mean) != nFeatures || len(mw.Scaler.Scale) != nFeatures {
			return errors.NewDimensionError("ModelWeights.Validate", nFeatures, len(mw.Scaler.Mean), 1)
		}
	}
	return nil
}

// Clone はModelWeightsのディープコピーを作成
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:       mw.ModelType,
		Version:         mw.Version,
		IsFitted:        mw.IsFitted,
		Features:        append([]string(nil), mw.Features...),
		Classes:         append([]string(nil), mw.Classes...),
		Intercepts:      append([]float64(nil), mw.Intercepts...),
		CoefMatrix:      make([][]float64, len(mw.CoefMatrix)),
		Hyperparameters: make(map[string]interface{}, len(mw.Hyperparameters)),
		Metadata:        make(map[string]interface{}, len(mw.Metadata)),
	}

	for i, row := range mw.CoefMatrix {
		clone.CoefMatrix[i] = append([]float64(nil), row...)
	}
	if mw.Scaler != nil {
		clone.Scaler = &ScalerParams{
			Mean:  append([]float64(nil), mw.Scaler.Mean...),
			Scale: append([]float64(nil), mw.Scaler.Scale...),
		}
	}
	if mw.Encoding != nil {
		clone.Encoding = make(map[string][]string, len(mw.Encoding))
		for k, v := range mw.Encoding {
			clone.Encoding[k] = append([]string(nil), v...)
		}
	}
	for k, v := range mw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}
	for k, v := range mw.Metadata {
		clone.Metadata[k] = v
	}

	return clone
}
