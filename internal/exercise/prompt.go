package exercise

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to answer with a Plan-shaped JSON object.
const SystemPrompt = `You are a professional fitness trainer creating a personalized weekly exercise plan.

Rules:
- Create exactly one workout day per requested training day, keyed "Day1", "Day2", ... in order.
- Each day has "dayName", "focus", "duration" (minutes, the whole session),
  "warmup": {"exercises": [{"name","duration","instructions"}]},
  "mainWorkout": 6 to 8 exercises, each {"exerciseName","targetMuscles","sets","reps","restSeconds",
  "instructions","youtubeSearchTerm","alternatives": [{"name","instructions","youtubeSearchTerm"}]},
  "cooldown": {"exercises": [{"name","duration","instructions"}]}.
- Warm-up and cool-down each take 10-15% of the session.
- Respect injuries, medical conditions, equipment and space.

Return a JSON object {"weeklyPlan": {...}, "progressionTips": [...], "safetyNotes": [...], "nutritionTips": [...]}.
Return only valid JSON, no comments or explanation.`

func orDefault(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func listOrDefault(l []string, fallback string) string {
	if len(l) == 0 {
		return fallback
	}
	return strings.Join(l, ", ")
}

// BuildPrompt renders the user message for a plan. note is free text from the
// user and may be empty. p must pass GeneratePlanReady.
func BuildPrompt(p Preferences, note string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Training days per week: %d\n", *p.DaysPerWeek)
	fmt.Fprintf(&b, "Minutes per session: %d\n", *p.MinutesPerSession)
	fmt.Fprintf(&b, "Fitness level: %s\n", *p.FitnessLevel)
	fmt.Fprintf(&b, "Primary goal: %s\n", *p.PrimaryGoal)
	if p.SecondaryGoal != nil {
		fmt.Fprintf(&b, "Secondary goal: %s\n", *p.SecondaryGoal)
	}
	if len(p.MuscleGroupsFocus) > 0 {
		fmt.Fprintf(&b, "Muscle groups to focus on: %s\n", strings.Join(p.MuscleGroupsFocus, ", "))
	}
	fmt.Fprintf(&b, "Medical conditions: %s\n", listOrDefault(p.MedicalConditions, "None"))
	fmt.Fprintf(&b, "Injuries/limitations: %s\n", orDefault(p.InjuriesOrLimitations, "None"))
	fmt.Fprintf(&b, "Current medications: %s\n", listOrDefault(p.Medications, "None"))
	fmt.Fprintf(&b, "Available equipment: %s\n", listOrDefault(p.Equipment, "Bodyweight only"))
	fmt.Fprintf(&b, "Machines access: %s\n", map[bool]string{true: "Yes", false: "No"}[p.MachinesAccess])
	fmt.Fprintf(&b, "Space: %s\n", orDefault(p.SpaceAvailability, "Any space"))
	fmt.Fprintf(&b, "Location: %s\n", orDefault(p.Location, "Any location"))
	fmt.Fprintf(&b, "Preferred time of day: %s\n", orDefault(p.PreferredTimeOfDay, "Any time"))
	fmt.Fprintf(&b, "Job type: %s\n", orDefault(p.JobType, "Moderate activity"))
	if p.DifficultyLevel != nil {
		fmt.Fprintf(&b, "Preferred difficulty: %s\n", *p.DifficultyLevel)
	}
	if n := strings.TrimSpace(note); n != "" {
		fmt.Fprintf(&b, "Notes: %s\n", n)
	}
	return b.String()
}
