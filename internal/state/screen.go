package state

import (
	"github.com/looplab/fsm"
)

// Screens. One value replaces the original UI's pile of nullable selection
// fields; a document viewer can only exist on top of a selected
// consistency and vehicle because no other path reaches it.
const (
	ScreenChooseConsistency = "choose_consistency"
	ScreenChooseVehicle     = "choose_vehicle"
	ScreenRecordList        = "record_list"
	ScreenRecordForm        = "record_form"
	ScreenDocumentViewer    = "document_viewer"
)

// Events.
const (
	EventSelectConsistency = "select_consistency"
	EventSelectVehicle     = "select_vehicle"
	EventOpenForm          = "open_form"
	EventCloseForm         = "close_form"
	EventOpenDocument      = "open_document"
	EventCloseDocument     = "close_document"
	EventBack              = "back"
)

var allScreens = []string{
	ScreenChooseConsistency,
	ScreenChooseVehicle,
	ScreenRecordList,
	ScreenRecordForm,
	ScreenDocumentViewer,
}

// newScreenFSM builds the navigation machine. Back is global: it returns
// to the consistency chooser from any screen.
func newScreenFSM() *fsm.FSM {
	events := fsm.Events{
		{Name: EventSelectConsistency, Src: []string{ScreenChooseConsistency}, Dst: ScreenChooseVehicle},
		{Name: EventSelectVehicle, Src: []string{ScreenChooseVehicle, ScreenRecordList}, Dst: ScreenRecordList},
		{Name: EventOpenForm, Src: []string{ScreenRecordList}, Dst: ScreenRecordForm},
		{Name: EventCloseForm, Src: []string{ScreenRecordForm}, Dst: ScreenRecordList},
		{Name: EventOpenDocument, Src: []string{ScreenRecordList, ScreenRecordForm}, Dst: ScreenDocumentViewer},
		{Name: EventCloseDocument, Src: []string{ScreenDocumentViewer}, Dst: ScreenRecordList},
		{Name: EventBack, Src: allScreens, Dst: ScreenChooseConsistency},
	}

	return fsm.NewFSM(ScreenChooseConsistency, events, fsm.Callbacks{})
}
