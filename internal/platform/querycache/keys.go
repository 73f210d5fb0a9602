package querycache

import "strings"

type Entity string

const (
	Patients                  Entity = "patients"
	Medications               Entity = "medications"
	MedicationSchedules       Entity = "medication-schedules"
	MedicationAdministrations Entity = "medication-administrations"
)

// Key identifica una entrada: (scope, entity). Scope vacío = "all".
// Ej: (patientID, medications), ("medication:"+id, medication-schedules).
type Key struct {
	Scope  string
	Entity Entity
}

func All(e Entity) Key {
	return Key{Entity: e}
}

func By(scope string, e Entity) Key {
	return Key{Scope: scope, Entity: e}
}

// medicationScope separa las keys por medicamento de las keys por paciente.
const medicationScope = "medication:"

// ByMedication arma una key con scope de medicamento.
func ByMedication(medicationID string, e Entity) Key {
	return Key{Scope: medicationScope + medicationID, Entity: e}
}

func (k Key) IsAll() bool { return k.Scope == "" }

// MedicationID devuelve el id si la key tiene scope de medicamento.
func (k Key) MedicationID() (string, bool) {
	return strings.CutPrefix(k.Scope, medicationScope)
}

func (k Key) String() string {
	if k.Scope == "" {
		return string(k.Entity)
	}
	return k.Scope + "/" + string(k.Entity)
}

// PatientKeys devuelve las keys con scope de paciente que dependen de sus medicamentos.
func PatientKeys(patientID string) []Key {
	return []Key{
		By(patientID, Medications),
		By(patientID, MedicationSchedules),
		By(patientID, MedicationAdministrations),
	}
}

// Union concatena sets de keys sin duplicados, preservando el orden.
func Union(sets ...[]Key) []Key {
	seen := map[Key]struct{}{}
	out := make([]Key, 0)
	for _, set := range sets {
		for _, k := range set {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
