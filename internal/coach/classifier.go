package coach

import "strings"

type Topic int

const (
	TopicDefault Topic = iota
	TopicCrisis
	TopicMeditation
	TopicWorkout
	TopicNutrition
	TopicSleep
	TopicMood
	TopicHabit
	TopicShortOrQuestion
)

var topicNames = map[Topic]string{
	TopicDefault:         "default",
	TopicCrisis:          "crisis",
	TopicMeditation:      "meditation",
	TopicWorkout:         "workout",
	TopicNutrition:       "nutrition",
	TopicSleep:           "sleep",
	TopicMood:            "mood",
	TopicHabit:           "habit",
	TopicShortOrQuestion: "short_or_question",
}

func (t Topic) String() string {
	if name, ok := topicNames[t]; ok {
		return name
	}
	return "unknown"
}

// Crisis phrases and "stress" match as substrings; every other keyword must be
// a whole whitespace-separated word.
var crisisPhrases = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"want to die",
	"end my life",
	"self harm",
	"self-harm",
	"hurt myself",
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var (
	meditationWords = wordSet("meditation", "mindfulness", "breathe", "breathing", "relax", "relaxation", "calm", "peace", "focus", "anxiety", "worry")
	workoutWords    = wordSet("workout", "exercise", "training", "gym", "pushups", "squat", "fitness", "run", "walk", "cardio", "strength", "sport", "active", "move")
	nutritionWords  = wordSet("diet", "nutrition", "meal", "calories", "protein", "vegetarian", "vegan", "snack", "eat", "food", "weight", "cook", "recipe", "healthy")
	sleepWords      = wordSet("sleep", "insomnia", "tired", "rest", "fatigue", "sleepy", "awake", "bed", "nap", "dream")
	moodWords       = wordSet("mood", "happy", "sad", "depressed", "energy", "motivation", "confidence", "brain", "mental", "feeling", "emotion")
	habitWords      = wordSet("habit", "routine", "goal", "progress", "improve", "change", "build", "track", "consistency")
)

type input struct {
	lower string
	words map[string]struct{}
	count int
}

func newInput(message string) input {
	lower := strings.ToLower(strings.TrimSpace(message))
	fields := strings.Fields(lower)
	in := input{lower: lower, words: make(map[string]struct{}, len(fields)), count: len(fields)}
	for _, f := range fields {
		in.words[f] = struct{}{}
	}
	return in
}

func (in input) hasAny(set map[string]struct{}) bool {
	for w := range in.words {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

func (in input) containsAny(phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(in.lower, p) {
			return true
		}
	}
	return false
}

type rule struct {
	topic Topic
	match func(input) bool
}

// rules are evaluated top to bottom and the first match wins.
var rules = []rule{
	{TopicCrisis, func(in input) bool { return in.containsAny(crisisPhrases...) }},
	{TopicMeditation, func(in input) bool { return in.hasAny(meditationWords) || in.containsAny("stress") }},
	{TopicWorkout, func(in input) bool { return in.hasAny(workoutWords) }},
	{TopicNutrition, func(in input) bool { return in.hasAny(nutritionWords) }},
	{TopicSleep, func(in input) bool { return in.hasAny(sleepWords) }},
	{TopicMood, func(in input) bool { return in.hasAny(moodWords) }},
	{TopicHabit, func(in input) bool { return in.hasAny(habitWords) }},
	{TopicShortOrQuestion, func(in input) bool { return in.count < 6 || strings.HasSuffix(in.lower, "?") }},
}

// Classify maps a free-text message to the topic that drives the reply template.
func Classify(message string) Topic {
	in := newInput(message)
	for _, r := range rules {
		if r.match(in) {
			return r.topic
		}
	}
	return TopicDefault
}
