package hms

// UnknownDescription is returned for codes the catalog does not know.
const UnknownDescription = "Unknown error. Check the Bambu Lab wiki for the latest HMS documentation."

// descriptions maps codes in wiki notation to the English wiki text.
// The table is keyed on the exact formatted string so new codes can be
// pasted straight from printer reports.
var descriptions = map[string]string{
	// 03xx: motion controller, heaters, fans
	"0300_0100_0001_0001": "The heatbed temperature is abnormal; the heater may have a short circuit.",
	"0300_0100_0001_0002": "The heatbed temperature is abnormal; the sensor may have an open circuit.",
	"0300_0100_0001_0003": "The heatbed temperature is abnormal; the heater is over temperature.",
	"0300_0200_0001_0001": "The nozzle temperature is abnormal; the heater may have a short circuit.",
	"0300_0200_0001_0002": "The nozzle temperature is abnormal; the sensor may have an open circuit.",
	"0300_0300_0002_0001": "The speed of the part cooling fan is too slow or stopped; it may be stuck.",
	"0300_0400_0002_0001": "The speed of the hotend cooling fan is too slow or stopped; it may be stuck or the connector is loose.",
	"0300_0D00_0001_0004": "The nozzle temperature is abnormal; the hotend may not be installed correctly.",
	"0300_0F00_0002_0001": "The chamber temperature is abnormal; check the chamber heater and sensor.",
	"0300_1000_0002_0002": "The resonance frequency of the X axis differs from the last calibration; clean the carbon rods and recalibrate.",
	"0300_1200_0002_0001": "Front cover of the toolhead fell off; printing paused.",
	"0300_4000_0002_0001": "Motor-A has an open circuit or a missing phase; check the motor connector.",
	"0300_4100_0001_0001": "Motor-A driver is over temperature; the driver may be damaged.",

	// 05xx: mainboard, network, storage
	"0500_0100_0002_0001": "The media pipeline is malfunctioning; live view is unavailable.",
	"0500_0100_0003_0002": "USB camera is not connected; check the camera cable.",
	"0500_0200_0003_0001": "Failed to connect to the internet; check the network connection.",
	"0500_0300_0001_0001": "The MC module is malfunctioning; restart the device.",
	"0500_0300_0002_0004": "The SD card is abnormal; timelapse and print history are unavailable.",

	// 07xx: AMS
	"0700_0100_0001_0001": "The AMS1 slot1 motor is overloaded; the filament may be tangled or the spool may be stuck.",
	"0700_0100_0001_0003": "The AMS1 slot1 filament has run out; insert a new filament.",
	"0700_0200_0002_0001": "The AMS1 slot2 filament may be broken inside the AMS; pull out the filament and reload it.",
	"0700_2000_0002_0001": "Filament in the AMS PTFE tube may be broken; pull out the filament and check the tube.",
	"0700_4000_0002_0002": "The AMS humidity is high; dry the desiccant or replace it.",
	"0700_4500_0003_0001": "The RFID board of the AMS has an error; filament identification is unavailable.",

	// 0Cxx: vision system
	"0C00_0100_0001_0001": "Spaghetti failure detected; the print has been paused.",
	"0C00_0100_0002_0002": "Possible first layer defects detected; check the first layer quality.",
	"0C00_0200_0002_0001": "The build plate marker is not detected; confirm the plate is aligned with the corner of the heatbed.",
	"0C00_0300_0003_0003": "The chamber camera lens may be dirty; clean it for reliable detection.",

	// 12xx: toolhead interface board
	"1200_1000_0002_0001": "The filament cutter handle has not returned to its place; check for jams in the cutter.",
	"1200_2000_0002_0002": "Filament may be caught in the toolhead; open the front cover and check for tangles.",
}

// Describe returns the catalog description for a code, falling back to
// UnknownDescription when the code is not in the table.
func Describe(c Code) string {
	if desc, ok := descriptions[c.String()]; ok {
		return desc
	}
	return UnknownDescription
}

// Lookup is Describe with an explicit hit indicator, for callers that
// care whether the code was recognized.
func Lookup(c Code) (string, bool) {
	desc, ok := descriptions[c.String()]
	if !ok {
		return UnknownDescription, false
	}
	return desc, true
}
