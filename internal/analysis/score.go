package analysis

import (
	"github.com/dusk-indust/guardian/internal/metrics"
	"github.com/dusk-indust/guardian/internal/rules"
)

// Grade is a letter grade for maintainability or overall quality.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// severityWeights are the fixed per-severity penalties subtracted from
// the security score. Documented here and nowhere else; changing them
// changes every score.
var severityWeights = map[rules.Severity]int{
	rules.SeverityCritical: 25,
	rules.SeverityHigh:     15,
	rules.SeverityMedium:   8,
	rules.SeverityLow:      3,
	rules.SeverityInfo:     0,
}

// SecurityScore is 100 minus the weighted sum over vulnerability
// findings, floored at 0. A pure function of its input.
func SecurityScore(findings []rules.Finding) int {
	score := 100
	for _, f := range findings {
		if f.Category != rules.CategoryVulnerability {
			continue
		}
		score -= severityWeights[f.Severity]
	}
	if score < 0 {
		score = 0
	}
	return score
}

// MaintainabilityGrade maps the average maintainability index across
// analyzed files to a letter grade. No files means nothing to hold
// against the run: grade A.
func MaintainabilityGrade(files []metrics.FileMetrics) Grade {
	if len(files) == 0 {
		return GradeA
	}
	var sum float64
	for _, f := range files {
		sum += f.MaintainabilityIndex
	}
	return gradeForIndex(sum / float64(len(files)))
}

// gradeForIndex is the fixed threshold mapping from maintainability
// index to grade: A >= 85, B >= 70, C >= 55, D >= 40, else F.
func gradeForIndex(mi float64) Grade {
	switch {
	case mi >= 85:
		return GradeA
	case mi >= 70:
		return GradeB
	case mi >= 55:
		return GradeC
	case mi >= 40:
		return GradeD
	default:
		return GradeF
	}
}

// securityGrade bands the security score: A >= 90, B >= 75, C >= 60,
// D >= 40, else F.
func securityGrade(score int) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 75:
		return GradeB
	case score >= 60:
		return GradeC
	case score >= 40:
		return GradeD
	default:
		return GradeF
	}
}

// QualityGrade combines security and maintainability by taking the
// worse of the two grades. A fixed lookup, not a learned weighting.
func QualityGrade(securityScore int, maintainability Grade) Grade {
	sg := securityGrade(securityScore)
	if gradeRank(sg) > gradeRank(maintainability) {
		return sg
	}
	return maintainability
}

func gradeRank(g Grade) int {
	switch g {
	case GradeA:
		return 0
	case GradeB:
		return 1
	case GradeC:
		return 2
	case GradeD:
		return 3
	default:
		return 4
	}
}
