package model

// NSQFLevel is one entry of the static National Skills Qualification Framework catalog.
type NSQFLevel struct {
	Level       int
	Name        string
	Description string
}

// NSQFCatalog is the fixed 10-level framework table, ordered by level.
var NSQFCatalog = [MaxNSQFLevel]NSQFLevel{
	{Level: 1, Name: "Certificate", Description: "Basic knowledge and skills"},
	{Level: 2, Name: "Certificate", Description: "Advanced basic skills"},
	{Level: 3, Name: "Certificate", Description: "Skilled knowledge and competency"},
	{Level: 4, Name: "Certificate", Description: "Multi-skilling and specialization"},
	{Level: 5, Name: "Diploma", Description: "Comprehensive knowledge and skills"},
	{Level: 6, Name: "Advanced Diploma", Description: "Specialized technical skills"},
	{Level: 7, Name: "Bachelor's Degree", Description: "Broad knowledge base"},
	{Level: 8, Name: "Master's Degree", Description: "Advanced specialized knowledge"},
	{Level: 9, Name: "Master's Degree", Description: "Research and innovation skills"},
	{Level: 10, Name: "Doctoral Degree", Description: "Expertise and research leadership"},
}

// NSQFLevelProgress is the learner's standing at one catalog level.
type NSQFLevelProgress struct {
	Level         int
	Name          string
	Description   string
	AchievedCount int
	SkillsAtLevel []string // sorted, de-duplicated.
}

// NSQFProgress is the full framework view for one credential set. Levels always
// holds all catalog entries in ascending order.
type NSQFProgress struct {
	Levels               []NSQFLevelProgress
	HighestAchievedLevel int
	NextTarget           int // 0 once the maximum level has been reached.
	MaxLevelReached      bool
	Anomalies            []DataAnomaly
}
