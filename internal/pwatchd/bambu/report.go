package bambu

import (
	"encoding/json"

	"github.com/printwatch/printwatch/internal/pwatchd/hms"
)

// reportMessage is the top-level envelope a printer publishes on its
// report topic. Only print payloads carry telemetry; other sections
// (info, system, mc_print) are ignored.
type reportMessage struct {
	Print *printReport `json:"print"`
}

// printReport carries the fields we track from a print status push.
// Reports are incremental: the device only includes fields that
// changed, so everything is a pointer and absence means "unchanged".
type printReport struct {
	GcodeState      *string           `json:"gcode_state"`
	GcodeFile       *string           `json:"gcode_file"`
	SubtaskName     *string           `json:"subtask_name"`
	Percent         *int              `json:"mc_percent"`
	RemainingTime   *int              `json:"mc_remaining_time"`
	LayerNum        *int              `json:"layer_num"`
	TotalLayerNum   *int              `json:"total_layer_num"`
	BedTemper       *float64          `json:"bed_temper"`
	BedTargetTemper *float64          `json:"bed_target_temper"`
	NozzleTemper    *float64          `json:"nozzle_temper"`
	NozzleTarget    *float64          `json:"nozzle_target_temper"`
	NozzleTemper2   *float64          `json:"nozzle_temper_2"`
	NozzleTarget2   *float64          `json:"nozzle_target_temper_2"`
	ChamberTemper   *float64          `json:"chamber_temper"`
	HMS             []hms.ReportEntry `json:"hms"`

	// hmsPresent distinguishes "hms": [] (all clear) from a push
	// that simply omitted the field.
	hmsPresent bool
}

func (r *printReport) UnmarshalJSON(data []byte) error {
	type alias printReport
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	_, a.hmsPresent = probe["hms"]

	*r = printReport(a)
	return nil
}

// pushAllRequest asks the device to publish its complete state instead
// of incremental updates
const pushAllRequest = `{"pushing":{"command":"pushall"}}`
