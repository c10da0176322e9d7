package coach

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fitmind/fitmind/internal/profile"
)

const (
	labelDirect     = "Direct Answer:"
	labelGuidance   = "Personalized Guidance:"
	labelMotivation = "Motivation Line:"
)

// Reply is the three-part coach answer. An empty Guidance means the section
// is left out of the rendered text.
type Reply struct {
	Topic      Topic
	Direct     string
	Guidance   string
	Motivation string
}

func (r Reply) String() string {
	sections := []string{labelDirect + "\n" + r.Direct}
	if r.Guidance != "" {
		sections = append(sections, labelGuidance+"\n"+r.Guidance)
	}
	sections = append(sections, labelMotivation+"\n"+r.Motivation)
	return strings.Join(sections, "\n\n")
}

// Respond classifies the message and composes the reply for it.
func Respond(message string, p *profile.Profile) Reply {
	return Compose(Classify(message), p)
}

// Workout scripts keyed by activity level; a missing profile gets the moderate one.
const (
	workoutLow = "Start gentle: a 5-minute warm-up walk, then 2 rounds of 8 bodyweight squats, " +
		"5 wall push-ups and a 20-second plank. Total time: about 10-15 minutes."
	workoutModerate = "Try this: a 5-minute warm-up, then 3 rounds of 12 squats, 10 push-ups, " +
		"10 lunges per leg and a 30-second plank. Total time: about 15-20 minutes."
	workoutHigh = "Push it: a 10-minute dynamic warm-up, then 5 rounds of 15 jump squats, 15 push-ups, " +
		"12 burpees and a 45-second plank. Total time: about 30-35 minutes."
)

func WorkoutScript(activityLevel string) string {
	switch activityLevel {
	case profile.LevelLow:
		return workoutLow
	case profile.LevelHigh:
		return workoutHigh
	default:
		return workoutModerate
	}
}

type composer func(p *profile.Profile) Reply

var composers = map[Topic]composer{
	TopicCrisis:          composeCrisis,
	TopicMeditation:      composeMeditation,
	TopicWorkout:         composeWorkout,
	TopicNutrition:       composeNutrition,
	TopicSleep:           composeSleep,
	TopicMood:            composeMood,
	TopicHabit:           composeHabit,
	TopicShortOrQuestion: composeShortOrQuestion,
	TopicDefault:         composeDefault,
}

// Compose builds the reply for a topic; p may be nil.
func Compose(topic Topic, p *profile.Profile) Reply {
	c, ok := composers[topic]
	if !ok {
		topic, c = TopicDefault, composeDefault
	}
	r := c(p)
	r.Topic = topic
	return r
}

func composeCrisis(_ *profile.Profile) Reply {
	return Reply{
		Direct: "I'm really sorry you're feeling this way, and I'm glad you reached out. " +
			"You don't have to go through this alone.",
		Guidance: "If you are in immediate danger, call your local emergency number right now. " +
			"Please reach out to a crisis line or a mental-health professional today, " +
			"and if you can, tell someone you trust how you are feeling.",
		Motivation: "Your life matters, and help is available right now.",
	}
}

func composeMeditation(p *profile.Profile) Reply {
	direct := "A short breathing practice is one of the fastest ways to calm your mind: " +
		"inhale for 4 seconds, hold for 4, exhale for 6, and repeat for 5 minutes."
	if stressIs(p, profile.LevelHigh) {
		direct += " Since your stress level is high, try to do this today, not someday."
	}
	guidance := "Find a quiet spot, sit comfortably and focus on your breath. " +
		"When thoughts wander, gently bring your attention back. " +
		"Start with 5-10 minutes daily and try our guided sessions."
	if sleepBelow(p, 6) {
		guidance += " You're sleeping less than 6 hours, and short sleep raises stress, " +
			"so an evening session before bed can help with both."
	}
	return Reply{
		Direct:     direct,
		Guidance:   guidance,
		Motivation: "Every calm breath is a small step toward a clearer mind.",
	}
}

func composeWorkout(p *profile.Profile) Reply {
	guidance := WorkoutScript(activityLevel(p))
	if sleepBelow(p, 6) {
		guidance += " Recovery tip: you're sleeping under 6 hours, so keep the intensity moderate " +
			"today and prioritize rest tonight."
	}
	return Reply{
		Direct:     "Movement is one of the best things you can do for body and mind. Here's a session that fits your level.",
		Guidance:   guidance,
		Motivation: "Strong bodies are built one session at a time. Let's move!",
	}
}

func composeNutrition(p *profile.Profile) Reply {
	guidance := "Build each plate as half vegetables, a quarter lean protein and a quarter whole grains. " +
		"Drink water through the day and keep processed snacks to a minimum."
	if bmi, ok := p.BMI(); ok {
		switch {
		case bmi > 25:
			guidance += fmt.Sprintf(" With a BMI of %.1f, a small calorie deficit of about 300-500 kcal a day "+
				"plus protein at every meal supports steady, sustainable weight loss.", bmi)
		case bmi < 18.5:
			guidance += fmt.Sprintf(" With a BMI of %.1f, focus on nutrient-dense foods and add an extra snack "+
				"or two each day to reach a healthy weight.", bmi)
		}
	}
	if stressIs(p, profile.LevelHigh) {
		guidance += " Because your stress is high, go easy on caffeine and sugar, which can amplify stress and energy crashes."
	}
	return Reply{
		Direct: "Balanced meals with lean protein, whole grains, healthy fats and plenty of vegetables " +
			"will fuel your body and your workouts.",
		Guidance:   guidance,
		Motivation: "Nourish your body and it will take care of you.",
	}
}

func composeSleep(p *profile.Profile) Reply {
	guidance := "Keep a consistent bedtime, avoid screens for 30-60 minutes before bed, " +
		"and keep your room cool, dark and quiet."
	if p != nil && p.SleepHours != nil {
		hours := formatHours(*p.SleepHours)
		switch {
		case *p.SleepHours < 6:
			guidance += " You're currently getting about " + hours + " hours, which is below the recommended range, " +
				"so aim to go to bed 30 minutes earlier this week."
		case *p.SleepHours > 9:
			guidance += " You're sleeping about " + hours + " hours, so focus on sleep quality rather than quantity: " +
				"wake up at the same time every day and get some morning sunlight."
		}
	}
	if activityLevel(p) == profile.LevelLow {
		guidance += " Adding some daily activity, even a 20-minute walk, can help you fall asleep faster."
	}
	return Reply{
		Direct:     "Most adults need 7-9 hours of quality sleep each night for recovery, mood and focus.",
		Guidance:   guidance,
		Motivation: "Great days start with restful nights.",
	}
}

func composeMood(p *profile.Profile) Reply {
	guidance := "Get some sunlight, move your body, connect with someone you care about, " +
		"and write down one thing you're grateful for today."
	var ideas []string
	if stressIs(p, profile.LevelHigh) {
		ideas = append(ideas, "a 5-minute breathing break")
	}
	if sleepBelow(p, 6) {
		ideas = append(ideas, "an earlier bedtime tonight")
	}
	if activityLevel(p) == profile.LevelLow {
		ideas = append(ideas, "a 10-minute walk outside")
	}
	if len(ideas) > 0 {
		guidance += " Given your profile, these may help lift your mood: " + strings.Join(ideas, ", ") + "."
	}
	return Reply{
		Direct:     "Your mood matters, and small actions can make a real difference in how you feel.",
		Guidance:   guidance,
		Motivation: "Be kind to yourself. Brighter days are built one small step at a time.",
	}
}

func composeHabit(p *profile.Profile) Reply {
	guidance := "Pick one tiny habit, attach it to something you already do every day, and track it for two weeks."
	if p != nil {
		guidance += fmt.Sprintf(" Your profile shows stress level: %s and activity level: %s, "+
			"so start with a habit that fits where you are right now.", p.StressLevel, p.ActivityLevel)
	}
	return Reply{
		Direct:     "Lasting change comes from small habits repeated consistently, not from big bursts of motivation.",
		Guidance:   guidance,
		Motivation: "Small steps every day add up to big results.",
	}
}

func composeShortOrQuestion(p *profile.Profile) Reply {
	direct := "I can help you with workouts, nutrition, sleep, meditation, mood and building healthy habits. Ask me anything!"
	if p != nil {
		var ideas []string
		if stressIs(p, profile.LevelHigh) {
			ideas = append(ideas, "a short meditation")
		}
		if sleepBelow(p, 6) {
			ideas = append(ideas, "a better sleep routine")
		}
		if p.ActivityMinutes != nil && *p.ActivityMinutes < 30 {
			ideas = append(ideas, "a quick 15-minute workout")
		}
		if p.Age == nil {
			ideas = append(ideas, "setting up your profile so I can personalize my advice")
		}
		if len(ideas) > 0 {
			direct += " Based on your profile, you could start with: " + strings.Join(ideas, ", ") + "."
		}
	}
	return Reply{
		Direct:     direct,
		Motivation: "I'm here whenever you're ready to take the next step.",
	}
}

func composeDefault(p *profile.Profile) Reply {
	guidance := "Tell me about your goals, how you're sleeping, or how you're feeling, and I'll suggest a plan that fits you."
	if bmi, ok := p.BMI(); ok {
		guidance += fmt.Sprintf(" Your snapshot: BMI %.1f (%s), stress level %s, activity level %s.",
			bmi, profile.Category(bmi), p.StressLevel, p.ActivityLevel)
	}
	return Reply{
		Direct:     "I'm your FitMind coach. I can help with fitness, nutrition, mental wellness, sleep and healthy habits.",
		Guidance:   guidance,
		Motivation: "Every healthy choice you make today is an investment in tomorrow.",
	}
}

func stressIs(p *profile.Profile, level string) bool {
	return p != nil && p.StressLevel == level
}

func activityLevel(p *profile.Profile) string {
	if p == nil {
		return ""
	}
	return p.ActivityLevel
}

func sleepBelow(p *profile.Profile, hours float64) bool {
	return p != nil && p.SleepHours != nil && *p.SleepHours < hours
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
