package process

import "fmt"

// PE/COFF machine types found in the image header.
const (
	imageFileMachineI386  = 0x014c
	imageFileMachineAMD64 = 0x8664

	peHeaderOffsetField = 0x3C
	peSignature         = 0x00004550 // "PE\0\0"
)

// DetectPointerSize reads the PE header of an image mapped in proc and returns
// the pointer width it was built for. This works the same for native Windows
// processes and for games hosted by Wine, where the executable is mapped as-is.
func DetectPointerSize(proc Process, image ModuleInfo) (ProcessMemorySize, error) {
	lfanew, err := Read[uint32](proc, image.Base.Offset(peHeaderOffsetField))
	if err != nil {
		return 0, fmt.Errorf("read e_lfanew of %s: %w", image.Name, err)
	}

	ntHeaders := image.Base.Offset(ProcessMemorySize(lfanew))
	sig, err := Read[uint32](proc, ntHeaders)
	if err != nil {
		return 0, fmt.Errorf("read PE signature of %s: %w", image.Name, err)
	}
	if sig != peSignature {
		return 0, fmt.Errorf("%s: bad PE signature 0x%X", image.Name, sig)
	}

	machine, err := Read[uint16](proc, ntHeaders.Offset(4))
	if err != nil {
		return 0, fmt.Errorf("read machine type of %s: %w", image.Name, err)
	}

	switch machine {
	case imageFileMachineI386:
		return PointerSize32, nil
	case imageFileMachineAMD64:
		return PointerSize64, nil
	default:
		return 0, fmt.Errorf("%s: unsupported machine type 0x%X", image.Name, machine)
	}
}

// ImageSize returns SizeOfImage from the optional header of an image mapped
// at base. The field sits at the same offset for PE32 and PE32+.
func ImageSize(proc Process, base ProcessMemoryAddress) (ProcessMemorySize, error) {
	lfanew, err := Read[uint32](proc, base.Offset(peHeaderOffsetField))
	if err != nil {
		return 0, err
	}
	// signature(4) + file header(20) + SizeOfImage offset in optional header(56)
	size, err := Read[uint32](proc, base.Offset(ProcessMemorySize(lfanew)+4+20+56))
	if err != nil {
		return 0, err
	}
	return ProcessMemorySize(size), nil
}
