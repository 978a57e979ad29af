package heroes

import (
	"encoding/binary"

	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/utils"
)

const (
	SeedSize  = 32
	SkinCount = 9
)

// Seed folds the generation inputs into a 32 byte seed. Chunk i of the input
// is XORed in with every byte offset by i*17 so repeated chunks do not cancel.
func Seed(timestamp int64, sequence uint64, owner string, id uint16) [SeedSize]byte {
	input := make([]byte, 0, 18+len(owner))
	input = binary.LittleEndian.AppendUint64(input, uint64(timestamp))
	input = binary.LittleEndian.AppendUint64(input, sequence)
	input = append(input, owner...)
	input = binary.LittleEndian.AppendUint16(input, id)

	var seed [SeedSize]byte
	for i := 0; i*SeedSize < len(input); i++ {
		end := min((i+1)*SeedSize, len(input))
		offset := byte(i * 17)
		for j, b := range input[i*SeedSize : end] {
			seed[j] ^= b + offset
		}
	}
	return seed
}

// Generate derives a hero from its inputs. The same inputs always yield the
// same hero.
func Generate(id uint16, timestamp int64, sequence uint64, owner string) (Hero, error) {
	seed := Seed(timestamp, sequence, owner, id)

	roll := binary.LittleEndian.Uint16(seed[0:2]) % RarityRollDomain
	rarity := RarityFromRoll(roll)
	table := rarity.Stats()

	power := table.Power.Pick(uint64(binary.LittleEndian.Uint32(seed[3:7])))
	speed := table.Speed.Pick(uint64(binary.LittleEndian.Uint32(seed[7:11])))
	stamina := table.Stamina.Pick(uint64(binary.LittleEndian.Uint32(seed[11:15])))
	bombCount := table.BombCount.Pick(uint64(binary.LittleEndian.Uint16(seed[15:17])))
	bombRange := table.BombRange.Pick(uint64(binary.LittleEndian.Uint16(seed[17:19])))

	statSum := uint64(power) + uint64(speed) + uint64(stamina)
	hp, err := utils.Mul(statSum, uint64(rarity.HPMultiplier()))
	if err != nil {
		return Hero{}, err
	}
	if hp > uint64(^uint32(0)) {
		return Hero{}, economy.ErrArithmeticOverflow
	}

	return Hero{
		ID:             id,
		Rarity:         rarity,
		SkinID:         seed[2]%SkinCount + 1,
		Power:          power,
		Speed:          speed,
		Stamina:        stamina,
		MaxStamina:     stamina,
		BombCount:      uint8(bombCount),
		BombRange:      uint8(bombRange),
		HP:             uint32(hp),
		MaxHP:          uint32(hp),
		LastActionTime: timestamp,
	}, nil
}
