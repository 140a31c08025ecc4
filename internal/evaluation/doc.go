// Package evaluation scores tracker output and charts it.
//
// Scores follow the usual detection definitions: precision is
// TP/(TP+FP), recall is TP/(TP+FN), and F1 is their harmonic mean. A
// Summary averages those per run rather than pooling counts.
package evaluation
