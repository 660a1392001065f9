package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableStudents      = "students"
	tableMistakes      = "mistakes"
	tableCards         = "review_cards"
	tablePerformance   = "performance_records"
	tableCurricula     = "curricula"
	tableFeedback      = "feedback"
	tablePlans         = "remediation_plans"
	tableTrackers      = "tracker_snapshots"
	tableSessionEvents = "session_events"
	tableLLMEvents     = "llm_request_events"
	tableOptRuns       = "optimization_runs"
	tableSequence      = "event_sequence"
)

func strCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString}
}

func textCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Size: 2147483647, Default: ""}
}

func intCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt, Default: 0}
}

func int64Col(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt64, Default: 0}
}

func floatCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeFloat64, Default: 0}
}

func timeCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeTime}
}

func jsonCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeJSON, Nullable: true}
}

func idCol() *schema.Column {
	return &schema.Column{Name: "id", Type: field.TypeString}
}

func autoIDCol() *schema.Column {
	return &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
}

// tables returns the full schema migrated on Open.
func tables() []*schema.Table {
	students := schema.NewTable(tableStudents).
		AddPrimary(idCol()).
		AddColumn(intCol("grade_level")).
		AddColumn(jsonCol("mastered_topics")).
		AddColumn(textCol("current_topic")).
		AddColumn(intCol("current_difficulty")).
		AddColumn(timeCol("updated_at"))

	mistakes := schema.NewTable(tableMistakes).
		AddPrimary(idCol()).
		AddColumn(strCol("student_id")).
		AddColumn(strCol("question_id")).
		AddColumn(strCol("topic_id")).
		AddColumn(strCol("subject")).
		AddColumn(intCol("grade_level")).
		AddColumn(textCol("student_answer")).
		AddColumn(textCol("correct_answer")).
		AddColumn(intCol("difficulty")).
		AddColumn(&schema.Column{Name: "misconception_id", Type: field.TypeString, Nullable: true}).
		AddColumn(timeCol("created_at")).
		AddIndex("mistake_student_created", false, []string{"student_id", "created_at"})

	cards := schema.NewTable(tableCards).
		AddPrimary(idCol()).
		AddColumn(strCol("student_id")).
		AddColumn(strCol("topic_id")).
		AddColumn(strCol("question_id")).
		AddColumn(intCol("difficulty")).
		AddColumn(timeCol("next_review_at")).
		AddColumn(intCol("repetition")).
		AddColumn(intCol("interval_days")).
		AddColumn(floatCol("ease")).
		AddColumn(intCol("last_quality")).
		AddColumn(intCol("reviews")).
		AddColumn(timeCol("created_at")).
		AddColumn(timeCol("updated_at")).
		AddIndex("card_student_question", true, []string{"student_id", "question_id"}).
		AddIndex("card_student_due", false, []string{"student_id", "next_review_at"})

	performance := schema.NewTable(tablePerformance).
		AddPrimary(idCol()).
		AddColumn(strCol("session_id")).
		AddColumn(strCol("student_id")).
		AddColumn(intCol("grade_level")).
		AddColumn(strCol("subject")).
		AddColumn(strCol("topic_id")).
		AddColumn(strCol("session_type")).
		AddColumn(intCol("correct")).
		AddColumn(intCol("total")).
		AddColumn(floatCol("accuracy")).
		AddColumn(floatCol("duration_seconds")).
		AddColumn(floatCol("expected_seconds")).
		AddColumn(floatCol("average_difficulty")).
		AddColumn(timeCol("completed_at")).
		AddIndex("performance_grade_subject", false, []string{"grade_level", "subject"})

	curricula := schema.NewTable(tableCurricula).
		AddPrimary(idCol()).
		AddColumn(intCol("grade_level")).
		AddColumn(strCol("subject")).
		AddColumn(strCol("version")).
		AddColumn(textCol("reason")).
		AddColumn(textCol("previous_id")).
		AddColumn(jsonCol("payload")).
		AddColumn(timeCol("created_at")).
		AddIndex("curriculum_grade_subject_version", true, []string{"grade_level", "subject", "version"})

	feedback := schema.NewTable(tableFeedback).
		AddPrimary(idCol()).
		AddColumn(intCol("grade_level")).
		AddColumn(strCol("subject")).
		AddColumn(textCol("topic_id")).
		AddColumn(textCol("student_id")).
		AddColumn(intCol("rating")).
		AddColumn(textCol("comment")).
		AddColumn(timeCol("created_at")).
		AddIndex("feedback_grade_subject", false, []string{"grade_level", "subject"})

	plans := schema.NewTable(tablePlans).
		AddPrimary(idCol()).
		AddColumn(strCol("student_id")).
		AddColumn(strCol("subject")).
		AddColumn(strCol("priority")).
		AddColumn(strCol("status")).
		AddColumn(jsonCol("payload")).
		AddColumn(timeCol("created_at")).
		AddColumn(timeCol("updated_at")).
		AddIndex("plan_student_subject", false, []string{"student_id", "subject"})

	trackers := schema.NewTable(tableTrackers).
		AddPrimary(&schema.Column{Name: "student_id", Type: field.TypeString}).
		AddColumn(jsonCol("payload")).
		AddColumn(timeCol("updated_at"))

	sessionEvents := schema.NewTable(tableSessionEvents).
		AddPrimary(autoIDCol()).
		AddColumn(int64Col("sequence")).
		AddColumn(timeCol("timestamp")).
		AddColumn(strCol("session_id")).
		AddColumn(strCol("student_id")).
		AddColumn(strCol("kind")).
		AddColumn(jsonCol("payload")).
		AddIndex("session_event_sequence", true, []string{"sequence"}).
		AddIndex("session_event_student", false, []string{"student_id"})

	llmEvents := schema.NewTable(tableLLMEvents).
		AddPrimary(autoIDCol()).
		AddColumn(int64Col("sequence")).
		AddColumn(timeCol("timestamp")).
		AddColumn(strCol("provider")).
		AddColumn(strCol("model")).
		AddColumn(strCol("purpose")).
		AddColumn(intCol("input_tokens")).
		AddColumn(intCol("output_tokens")).
		AddColumn(int64Col("latency_ms")).
		AddColumn(&schema.Column{Name: "success", Type: field.TypeBool, Default: false}).
		AddColumn(textCol("error_message")).
		AddColumn(textCol("request_body")).
		AddColumn(textCol("response_body")).
		AddIndex("llm_event_sequence", true, []string{"sequence"})

	optRuns := schema.NewTable(tableOptRuns).
		AddPrimary(autoIDCol()).
		AddColumn(int64Col("sequence")).
		AddColumn(timeCol("started_at")).
		AddColumn(timeCol("finished_at")).
		AddColumn(intCol("processed")).
		AddColumn(intCol("optimized")).
		AddColumn(intCol("skipped")).
		AddColumn(intCol("failed")).
		AddColumn(jsonCol("summary"))

	seq := schema.NewTable(tableSequence).
		AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt}).
		AddColumn(&schema.Column{Name: "next_val", Type: field.TypeInt64, Default: 1})

	return []*schema.Table{
		students, mistakes, cards, performance, curricula, feedback,
		plans, trackers, sessionEvents, llmEvents, optRuns, seq,
	}
}
