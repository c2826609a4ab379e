package testreport

import "strings"

// TraitType is the well-known semantic kind of a trait.
type TraitType int

// Trait types, everything but Custom has a well-known meaning.
const (
	TraitIdentifier TraitType = iota
	TraitName
	TraitResult
	TraitDuration
	TraitClassName
	TraitAssembly
	TraitMethod
	TraitConsoleOut
	TraitConsoleErr
	TraitFailureMessage
	TraitCallStack
	TraitInstanceID
	TraitComputer
	TraitInstanceName
	TraitCategory
	TraitPriority
	TraitCustom
)

// TraitTypes lists every TraitType value.
func TraitTypes() []TraitType {
	return []TraitType{
		TraitIdentifier, TraitName, TraitResult, TraitDuration, TraitClassName,
		TraitAssembly, TraitMethod, TraitConsoleOut, TraitConsoleErr, TraitFailureMessage,
		TraitCallStack, TraitInstanceID, TraitComputer, TraitInstanceName, TraitCategory,
		TraitPriority, TraitCustom,
	}
}

// String returns the native name used for traits of this type.
func (t TraitType) String() string {
	switch t {
	case TraitIdentifier:
		return "Identifier"
	case TraitName:
		return "Name"
	case TraitResult:
		return "Result"
	case TraitDuration:
		return "Duration"
	case TraitClassName:
		return "ClassName"
	case TraitAssembly:
		return "Assembly"
	case TraitMethod:
		return "Method"
	case TraitConsoleOut:
		return "ConsoleOut"
	case TraitConsoleErr:
		return "ConsoleErr"
	case TraitFailureMessage:
		return "FailureMessage"
	case TraitCallStack:
		return "CallStack"
	case TraitInstanceID:
		return "InstanceId"
	case TraitComputer:
		return "Computer"
	case TraitInstanceName:
		return "InstanceName"
	case TraitCategory:
		return "Category"
	case TraitPriority:
		return "Priority"
	case TraitCustom:
		return "Custom"
	}
	return "Unknown"
}

// ExportType tells whether a trait describes the test definition or one execution.
type ExportType int

const (
	// Static traits describe the test definition.
	Static ExportType = iota
	// Instance traits describe one execution.
	Instance
)

func (e ExportType) String() string {
	if e == Instance {
		return "Instance"
	}
	return "Static"
}

// Trait is a typed key/value metadata attached to a run, suite or case.
type Trait struct {
	Type       TraitType
	Name       string
	Value      string
	ExportType ExportType
}

// NewTrait returns a well-known trait named after its type.
func NewTrait(traitType TraitType, value string, exportType ExportType) Trait {
	return Trait{Type: traitType, Name: traitType.String(), Value: value, ExportType: exportType}
}

// NewCustomTrait ...
func NewCustomTrait(name, value string, exportType ExportType) Trait {
	return Trait{Type: TraitCustom, Name: name, Value: value, ExportType: exportType}
}

// Slot tells where a codec keeps a trait of a given type.
type Slot int

const (
	// SlotExtension traits go to the generic extension section of the format.
	SlotExtension Slot = iota
	// SlotNative traits go to a first-class element of the format.
	SlotNative
	// SlotField traits are carried by a model field and are never written as traits.
	SlotField
)

// SlotFunc maps a trait type to its slot within one format.
type SlotFunc func(TraitType) Slot

// ScopeSlot is the mapping of run and suite traits: no format has native trait slots on those levels.
func ScopeSlot(t TraitType) Slot {
	switch t {
	case TraitIdentifier, TraitName:
		return SlotField
	case TraitResult, TraitDuration, TraitClassName, TraitAssembly, TraitMethod,
		TraitConsoleOut, TraitConsoleErr, TraitFailureMessage, TraitCallStack,
		TraitInstanceID, TraitComputer, TraitInstanceName, TraitCategory,
		TraitPriority, TraitCustom:
		return SlotExtension
	}
	return SlotExtension
}

// PartitionTraits splits traits by slot. Field backed traits are dropped,
// a native trait never shows up in the extension lists.
func PartitionTraits(traits []Trait, slot SlotFunc) (native, static, instance []Trait) {
	for _, trait := range traits {
		switch slot(trait.Type) {
		case SlotNative:
			native = append(native, trait)
		case SlotExtension:
			if trait.ExportType == Instance {
				instance = append(instance, trait)
			} else {
				static = append(static, trait)
			}
		case SlotField:
		}
	}
	return
}

// FindTraits returns the values of the traits with the given type.
func FindTraits(traits []Trait, traitType TraitType) []string {
	var values []string
	for _, trait := range traits {
		if trait.Type == traitType {
			values = append(values, trait.Value)
		}
	}
	return values
}

// FirstTrait returns the value of the first trait with the given type.
func FirstTrait(traits []Trait, traitType TraitType) string {
	for _, trait := range traits {
		if trait.Type == traitType {
			return trait.Value
		}
	}
	return ""
}

// TraitTypeForName resolves a native trait name (case sensitive) to its type, unknown names are Custom.
func TraitTypeForName(name string) TraitType {
	for _, t := range TraitTypes() {
		if t != TraitCustom && t.String() == name {
			return t
		}
	}
	return TraitCustom
}

// JoinTraits joins the values of the traits with the given type with new lines.
func JoinTraits(traits []Trait, traitType TraitType) string {
	return strings.Join(FindTraits(traits, traitType), "\n")
}

// AppendTrait appends a well-known trait unless the value is blank.
func AppendTrait(traits []Trait, traitType TraitType, value string, exportType ExportType) []Trait {
	if strings.TrimSpace(value) == "" {
		return traits
	}
	return append(traits, NewTrait(traitType, value, exportType))
}
