package catalog

import "arlingtonfleet/fleetmaint/internal/models"

// BuiltinSystems is the system/operation catalog of the default
// consistency. Operation ids are the LGT procedure codes; template
// document paths follow the protocol/traceability conventions.
var BuiltinSystems = []models.System{
	{
		ID:   "V35-FREA-FREIN",
		Name: "V35-FREA-FREIN",
		Operations: []models.Operation{
			{ID: "LGT-5000.0210", Name: "LGT-5000.0210", ProtocolURL: "/protocols/LGT-5000.0210.pdf", TraceabilityURL: "/traceability/LGT-5000.0210.pdf"},
			{ID: "LGT-5130.0008", Name: "LGT-5130.0008", ProtocolURL: "/protocols/LGT-5130.0008.pdf", TraceabilityURL: "/traceability/LGT-5130.0008.pdf"},
		},
	},
	{
		ID:   "V71-CAIA-MECA",
		Name: "V71-CAIA-MECA",
		Operations: []models.Operation{
			{ID: "LGT-1100.0020", Name: "LGT-1100.0020", ProtocolURL: "/protocols/LGT-1100.0020.pdf", TraceabilityURL: "/traceability/LGT-1100.0020.pdf"},
		},
	},
	{
		ID:   "V71-ECLA-ELEC",
		Name: "V71-ECLA-ELEC",
		Operations: []models.Operation{
			{ID: "LGT-1720.0003", Name: "LGT-1720.0003", ProtocolURL: "/protocols/LGT-1720.0003.pdf", TraceabilityURL: "/traceability/LGT-1720.0003.pdf"},
		},
	},
	{
		ID:   "V71-EQAA-ELEC",
		Name: "V71-EQAA-ELEC",
		Operations: []models.Operation{
			{ID: "LGT-6480.0312", Name: "LGT-6480.0312", ProtocolURL: "/protocols/LGT-6480.0312.pdf", TraceabilityURL: "/traceability/LGT-6480.0312.pdf"},
			{ID: "LGT-6480.0286", Name: "LGT-6480.0286", ProtocolURL: "/protocols/LGT-6480.0286.pdf", TraceabilityURL: "/traceability/LGT-6480.0286.pdf"},
			{ID: "LGT-6480.0306", Name: "LGT-6480.0306", ProtocolURL: "/protocols/LGT-6480.0306.pdf", TraceabilityURL: "/traceability/LGT-6480.0306.pdf"},
			{ID: "LGT-6480.0313", Name: "LGT-6480.0313", ProtocolURL: "/protocols/LGT-6480.0313.pdf", TraceabilityURL: "/traceability/LGT-6480.0313.pdf"},
		},
	},
	{
		ID:   "V71-HACA-MECA",
		Name: "V71-HACA-MECA",
		Operations: []models.Operation{
			{ID: "LGT-1600.0001", Name: "LGT-1600.0001", ProtocolURL: "/protocols/LGT-1600.0001.pdf", TraceabilityURL: "/traceability/LGT-1600.0001.pdf"},
			{ID: "LGT-1610.0043", Name: "LGT-1610.0043", ProtocolURL: "/protocols/LGT-1610.0043.pdf", TraceabilityURL: "/traceability/LGT-1610.0043.pdf"},
		},
	},
	{
		ID:   "V71-LICA-MECA",
		Name: "V71-LICA-MECA",
		Operations: []models.Operation{
			{ID: "LGT-1460.0005", Name: "LGT-1460.0005", ProtocolURL: "/protocols/LGT-1460.0005.pdf", TraceabilityURL: "/traceability/LGT-1460.0005.pdf"},
			{ID: "LGT-1450.0001", Name: "LGT-1450.0001", ProtocolURL: "/protocols/LGT-1450.0001.pdf", TraceabilityURL: "/traceability/LGT-1450.0001.pdf"},
			{ID: "LGT-1450.0007", Name: "LGT-1450.0007", ProtocolURL: "/protocols/LGT-1450.0007.pdf", TraceabilityURL: "/traceability/LGT-1450.0007.pdf"},
			{ID: "LGT-1510.0008", Name: "LGT-1510.0008", ProtocolURL: "/protocols/LGT-1510.0008.pdf", TraceabilityURL: "/traceability/LGT-1510.0008.pdf"},
			{ID: "LGT-1580.0008", Name: "LGT-1580.0008", ProtocolURL: "/protocols/LGT-1580.0008.pdf", TraceabilityURL: "/traceability/LGT-1580.0008.pdf"},
		},
	},
	{
		ID:   "V71-ORRA-MECA",
		Name: "V71-ORRA-MECA",
		Operations: []models.Operation{
			{ID: "LGT-1000.0116", Name: "LGT-1000.0116", ProtocolURL: "/protocols/LGT-1000.0116.pdf", TraceabilityURL: "/traceability/LGT-1000.0116.pdf"},
			{ID: "LGT-1000.0140", Name: "LGT-1000.0140", ProtocolURL: "/protocols/LGT-1000.0140.pdf", TraceabilityURL: "/traceability/LGT-1000.0140.pdf"},
			{ID: "LGT-1000.0131", Name: "LGT-1000.0131", ProtocolURL: "/protocols/LGT-1000.0131.pdf", TraceabilityURL: "/traceability/LGT-1000.0131.pdf"},
			{ID: "LGT-1000.0003", Name: "LGT-1000.0003", ProtocolURL: "/protocols/LGT-1000.0003.pdf", TraceabilityURL: "/traceability/LGT-1000.0003.pdf"},
			{ID: "LGT-2000.0294", Name: "LGT-2000.0294", ProtocolURL: "/protocols/LGT-2000.0294.pdf", TraceabilityURL: "/traceability/LGT-2000.0294.pdf"},
			{ID: "LGT-2000.0291", Name: "LGT-2000.0291", ProtocolURL: "/protocols/LGT-2000.0291.pdf", TraceabilityURL: "/traceability/LGT-2000.0291.pdf"},
			{ID: "LGT-1000.0130", Name: "LGT-1000.0130", ProtocolURL: "/protocols/LGT-1000.0130.pdf", TraceabilityURL: "/traceability/LGT-1000.0130.pdf"},
		},
	},
	{
		ID:   "V71-ORRA-ELEC",
		Name: "V71-ORRA-ELEC",
		Operations: []models.Operation{
			{ID: "LGT-0000.0517", Name: "LGT-0000.0517", ProtocolURL: "/protocols/LGT-0000.0517.pdf", TraceabilityURL: "/traceability/LGT-0000.0517.pdf"},
			{ID: "LGT-3130.0014", Name: "LGT-3130.0014", ProtocolURL: "/protocols/LGT-3130.0014.pdf", TraceabilityURL: "/traceability/LGT-3130.0014.pdf"},
		},
	},
	{
		ID:   "V71-POAA-MECA",
		Name: "V71-POAA-MECA",
		Operations: []models.Operation{
			{ID: "LGT-1310.0248", Name: "LGT-1310.0248", ProtocolURL: "/protocols/LGT-1310.0248.pdf", TraceabilityURL: "/traceability/LGT-1310.0248.pdf"},
			{ID: "LGT-1310.0249", Name: "LGT-1310.0249", ProtocolURL: "/protocols/LGT-1310.0249.pdf", TraceabilityURL: "/traceability/LGT-1310.0249.pdf"},
			{ID: "LGT-1310.0377", Name: "LGT-1310.0377", ProtocolURL: "/protocols/LGT-1310.0377.pdf", TraceabilityURL: "/traceability/LGT-1310.0377.pdf"},
		},
	},
}
