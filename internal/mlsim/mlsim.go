// Package mlsim produces stand-in training, prediction, and parse results when
// the Python ML backend is unreachable. Numbers are random but shaped like real
// backend output so the rest of the pipeline is exercised unchanged.
package mlsim

import (
	"fmt"
	"math/rand"
	"strings"

	"nlustudio/internal/mlbackend"
)

var algorithmNames = map[string]string{
	"random_forest":               "Random Forest",
	"xgboost":                     "XGBoost",
	"gradient_boosting":           "Gradient Boosting",
	"svm":                         "Support Vector Machine",
	"logistic_regression":         "Logistic Regression",
	"decision_tree":               "Decision Tree",
	"knn":                         "K-Nearest Neighbors",
	"naive_bayes":                 "Naive Bayes",
	"linear_regression":           "Linear Regression",
	"ridge":                       "Ridge Regression",
	"lasso":                       "Lasso Regression",
	"random_forest_regressor":     "Random Forest Regressor",
	"xgboost_regressor":           "XGBoost Regressor",
	"svr":                         "Support Vector Regression",
	"decision_tree_regressor":     "Decision Tree Regressor",
	"gradient_boosting_regressor": "Gradient Boosting Regressor",
	"kmeans":                      "K-Means",
	"dbscan":                      "DBSCAN",
	"hierarchical":                "Hierarchical Clustering",
	"gmm":                         "Gaussian Mixture Models",
	"mean_shift":                  "Mean Shift",
	"spectral":                    "Spectral Clustering",
}

var classificationAlgorithms = map[string]bool{
	"random_forest": true, "xgboost": true, "gradient_boosting": true,
	"svm": true, "logistic_regression": true, "decision_tree": true,
	"knn": true, "naive_bayes": true,
}

var regressionAlgorithms = map[string]bool{
	"linear_regression": true, "ridge": true, "lasso": true,
	"random_forest_regressor": true, "xgboost_regressor": true, "svr": true,
	"decision_tree_regressor": true, "gradient_boosting_regressor": true,
}

func AlgorithmName(id string) string {
	if name, ok := algorithmNames[id]; ok {
		return name
	}
	return id
}

// TrainModels mirrors the backend /api/ml/train response for every requested
// algorithm: accuracy in 80-95%, supervised metrics where applicable, and a
// ten-epoch loss/accuracy curve.
func TrainModels(req mlbackend.TrainRequest) *mlbackend.TrainResponse {
	results := make([]mlbackend.AlgorithmResult, 0, len(req.Algorithms))
	for _, algorithmID := range req.Algorithms {
		results = append(results, trainOne(algorithmID, req))
	}
	return &mlbackend.TrainResponse{Results: results}
}

func trainOne(algorithmID string, req mlbackend.TrainRequest) mlbackend.AlgorithmResult {
	accuracy := 0.80 + rand.Float64()*0.15

	result := mlbackend.AlgorithmResult{
		AlgorithmID:   algorithmID,
		AlgorithmName: AlgorithmName(algorithmID),
		Success:       true,
		Accuracy:      accuracy,
		ModelFilePath: fmt.Sprintf("/models/%d/%s_sim.pkl", req.WorkspaceID, algorithmID),
		Epochs:        epochCurve(accuracy),
	}

	if req.ProblemType == "clustering" {
		result.TrainingDuration = 1000 + rand.Intn(3000)
		return result
	}

	precision := accuracy + rand.Float64()*0.05 - 0.025
	recall := accuracy + rand.Float64()*0.05 - 0.025
	f1 := 2 * precision * recall / (precision + recall)
	result.Precision = &precision
	result.Recall = &recall
	result.F1Score = &f1
	result.ConfusionMatrix = [][]int{
		{85, 5, 3, 7},
		{4, 92, 2, 2},
		{6, 3, 88, 3},
		{5, 4, 2, 89},
	}
	result.TrainingDuration = 2000 + rand.Intn(5000)
	return result
}

func epochCurve(finalAccuracy float64) []mlbackend.EpochPoint {
	const epochs = 10
	points := make([]mlbackend.EpochPoint, 0, epochs)
	loss := 1.0 + rand.Float64()*0.5
	for i := 1; i <= epochs; i++ {
		progress := float64(i) / epochs
		loss *= 0.70 + rand.Float64()*0.15
		points = append(points, mlbackend.EpochPoint{
			Epoch:    i,
			Loss:     loss,
			Accuracy: finalAccuracy * (0.5 + 0.5*progress),
		})
	}
	return points
}

// Predict generates one prediction per input sample, typed by algorithm family.
func Predict(req mlbackend.PredictRequest) *mlbackend.PredictResponse {
	predictions := make([]mlbackend.Prediction, 0, len(req.Data))
	for _, sample := range req.Data {
		predictions = append(predictions, predictOne(sample, req.AlgorithmType))
	}
	return &mlbackend.PredictResponse{Predictions: predictions}
}

func predictOne(input map[string]interface{}, algorithmType string) mlbackend.Prediction {
	var prediction interface{}
	var confidence float64

	switch {
	case classificationAlgorithms[algorithmType]:
		classes := []string{"0", "1", "2", "3"}
		prediction = classes[rand.Intn(len(classes))]
		confidence = 0.70 + rand.Float64()*0.25
	case regressionAlgorithms[algorithmType]:
		prediction = fmt.Sprintf("%.2f", 20+rand.Float64()*100)
		confidence = 0.80 + rand.Float64()*0.15
	default:
		prediction = fmt.Sprintf("Cluster %d", rand.Intn(5))
		confidence = 0.75 + rand.Float64()*0.20
	}

	if confidence > 0.99 {
		confidence = 0.99
	}
	return mlbackend.Prediction{
		Input:      input,
		Prediction: prediction,
		Confidence: confidence,
	}
}

// Parse fakes an NLU parse: pick one of the model's known intents, or a
// fallback intent when the model declares none.
func Parse(text string, intents []string) *mlbackend.ParseResult {
	intent := "fallback"
	if len(intents) > 0 {
		intent = intents[rand.Intn(len(intents))]
	}
	confidence := 0.60 + rand.Float64()*0.35
	if strings.TrimSpace(text) == "" {
		confidence = 0.0
	}
	return &mlbackend.ParseResult{
		Intent:     intent,
		Confidence: confidence,
		Entities:   []mlbackend.ParsedEntity{},
	}
}
